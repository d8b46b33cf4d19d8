package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"inventory-aging/internal/core"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor INVENTORY_CONFIG is given.
const DefaultPath = "inventory.yaml"

// DefaultHeaderRow is the 0-based row of the header in the EBS on-hand
// extract; the rows above it hold the report parameters.
const DefaultHeaderRow = 17

type Config struct {
	Snapshot   SnapshotConfig  `yaml:"snapshot"`
	Warehouses WarehouseConfig `yaml:"warehouses"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Loader     LoaderConfig    `yaml:"loader"`
	Legend     LegendConfig    `yaml:"legend"`
	AsOf       string          `yaml:"as_of"`
	Database   DatabaseConfig  `yaml:"-"`
	Logging    LoggingConfig   `yaml:"-"`
}

type SnapshotConfig struct {
	HeaderRow      int               `yaml:"header_row"`
	PriorHeaderRow int               `yaml:"prior_header_row"`
	Sheet          string            `yaml:"sheet"`
	Columns        map[string]string `yaml:"columns"`
	Keep           []string          `yaml:"keep"`
}

type WarehouseConfig struct {
	Material      []string            `yaml:"material"`
	FinishedGoods FinishedGoodsConfig `yaml:"finished_goods"`
	Outsourced    []string            `yaml:"outsourced"`
	SemiFinished  []string            `yaml:"semi_finished"`
}

type FinishedGoodsConfig struct {
	Include       []string `yaml:"include"`
	IncludeLabels []string `yaml:"include_labels"`
	Exclude       []string `yaml:"exclude"`
}

type ThresholdConfig struct {
	RecencyDays           int `yaml:"recency_days"`
	OutsourcedStorageDays int `yaml:"outsourced_storage_days"`
	StandardStorageDays   int `yaml:"standard_storage_days"`
}

type LoaderConfig struct {
	Workers int `yaml:"workers"`
}

type LegendConfig struct {
	Organizations string `yaml:"organizations"`
	Source        string `yaml:"source"`
}

type DatabaseConfig struct {
	URL string
}

type LoggingConfig struct {
	Mode string
}

// Default returns the configuration used before the file and environment
// are applied. Warehouse code lists have no defaults and must be configured.
func Default() *Config {
	columns := make(map[string]string, len(core.SourceColumns))
	for _, c := range core.SourceColumns {
		columns[string(c)] = c.Label()
	}
	return &Config{
		Snapshot: SnapshotConfig{
			HeaderRow: DefaultHeaderRow,
			Columns:   columns,
		},
		Warehouses: WarehouseConfig{
			FinishedGoods: FinishedGoodsConfig{IncludeLabels: []string{"总库", "研发成品库"}},
		},
		Thresholds: ThresholdConfig{
			RecencyDays:           core.DefaultRecencyDays,
			OutsourcedStorageDays: core.DefaultOutsourcedStorageDays,
			StandardStorageDays:   core.DefaultStandardStorageDays,
		},
		Loader: LoaderConfig{Workers: runtime.NumCPU()},
		Legend: LegendConfig{Source: "EBS库存：CUX.现有量/可用量查询（XML报表）"},
	}
}

// Load reads the YAML file at path and applies environment overrides from
// the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
//
// Recognised variables: INVENTORY_AS_OF, INVENTORY_WORKERS, DATABASE_URL, LOG_MODE.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := strings.TrimSpace(getenv("INVENTORY_AS_OF")); v != "" {
		cfg.AsOf = v
	}
	if v := strings.TrimSpace(getenv("INVENTORY_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid INVENTORY_WORKERS %q: %w", v, err)
		}
		cfg.Loader.Workers = n
	}
	cfg.Database.URL = getenv("DATABASE_URL")
	cfg.Logging.Mode = getenv("LOG_MODE")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate reports all configuration problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.Warehouses.Material) == 0 {
		add("warehouses.material must list at least one warehouse code")
	}
	fg := c.Warehouses.FinishedGoods
	if len(fg.Include) == 0 && len(fg.IncludeLabels) == 0 {
		add("warehouses.finished_goods needs include codes or include_labels")
	}
	if len(c.Warehouses.SemiFinished) == 0 {
		add("warehouses.semi_finished must list at least one warehouse code")
	}
	if err := c.Rules().Validate(); err != nil {
		add("thresholds: %v", err)
	}
	if c.Snapshot.HeaderRow < 0 {
		add("snapshot.header_row must be >= 0, got %d", c.Snapshot.HeaderRow)
	}
	if c.Snapshot.PriorHeaderRow < 0 {
		add("snapshot.prior_header_row must be >= 0, got %d", c.Snapshot.PriorHeaderRow)
	}
	if c.Loader.Workers < 1 {
		add("loader.workers must be >= 1, got %d", c.Loader.Workers)
	}
	for _, col := range core.MandatoryColumns {
		if strings.TrimSpace(c.Snapshot.Columns[string(col)]) == "" {
			add("snapshot.columns.%s must name the header of a mandatory column", col)
		}
	}
	for id := range c.Snapshot.Columns {
		if !core.Column(id).IsSource() {
			add("snapshot.columns: unknown column %q", id)
		}
	}
	for _, id := range c.Snapshot.Keep {
		if !core.Column(id).IsSource() {
			add("snapshot.keep: unknown column %q", id)
		}
	}
	if c.AsOf != "" {
		if _, err := time.Parse(core.DateLayout, c.AsOf); err != nil {
			add("as_of must be YYYY-MM-DD, got %q", c.AsOf)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Rules returns the classifier thresholds and warehouse sets.
func (c *Config) Rules() core.Rules {
	return core.Rules{
		RecencyDays:           c.Thresholds.RecencyDays,
		OutsourcedStorageDays: c.Thresholds.OutsourcedStorageDays,
		StandardStorageDays:   c.Thresholds.StandardStorageDays,
		OutsourcedWarehouses:  c.Warehouses.Outsourced,
	}
}

// MaterialFilter selects the material warehouse class.
func (c *Config) MaterialFilter() core.WarehouseFilter {
	return core.WarehouseFilter{Include: c.Warehouses.Material}
}

// FinishedGoodsFilter selects the finished-goods warehouse class.
func (c *Config) FinishedGoodsFilter() core.WarehouseFilter {
	fg := c.Warehouses.FinishedGoods
	return core.WarehouseFilter{Include: fg.Include, IncludeLabels: fg.IncludeLabels, Exclude: fg.Exclude}
}

// Headers maps each configured column to its header text in the extract.
func (c *Config) Headers() map[core.Column]string {
	out := make(map[core.Column]string, len(c.Snapshot.Columns))
	for id, header := range c.Snapshot.Columns {
		if header = strings.TrimSpace(header); header != "" {
			out[core.Column(id)] = header
		}
	}
	return out
}

// KeepColumns returns the columns retained after load. An empty keep list
// retains every configured column.
func (c *Config) KeepColumns() []core.Column {
	out := make([]core.Column, 0, len(c.Snapshot.Keep))
	for _, id := range c.Snapshot.Keep {
		out = append(out, core.Column(id))
	}
	return out
}

// ReferenceDate returns the configured as-of date, or the last day of the
// month before now.
func (c *Config) ReferenceDate(now time.Time) time.Time {
	if c.AsOf != "" {
		if t, err := time.Parse(core.DateLayout, c.AsOf); err == nil {
			return t
		}
	}
	return core.DefaultAsOf(now)
}
