package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"inventory-aging/internal/core"
	"inventory-aging/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Options configures how snapshot files are read.
type Options struct {
	HeaderRow      int    // 0-based header row of a snapshot extract
	PriorHeaderRow int    // 0-based header row of a prior-period report
	Sheet          string // xlsx worksheet; empty means the first
	Headers        map[core.Column]string
	Keep           []core.Column // empty keeps every configured column
	Workers        int
}

// HeaderError is returned when a file lacks a required column header.
type HeaderError struct {
	File   string
	Column core.Column
	Header string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: column %q (header %q) not found", e.File, string(e.Column), e.Header)
}

// RowError is returned when a cell cannot be parsed.
type RowError struct {
	File   string
	Row    int // 1-based, as shown in a spreadsheet
	Column core.Column
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d, %s=%q: %v", e.File, e.Row, string(e.Column), e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Loader reads inventory snapshots into record sets.
type Loader struct {
	opts Options
	log  *logger.Logger
}

// NewLoader returns a loader. Workers below 1 is treated as 1.
func NewLoader(opts Options, log *logger.Logger) *Loader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Loader{opts: opts, log: log}
}

// LoadAll loads every file with at most Workers files in flight and
// concatenates the results in argument order. Any failure fails the batch,
// since classifying a partial dataset would give a misleading report.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (core.RecordSet, error) {
	if len(paths) == 0 {
		return core.RecordSet{}, fmt.Errorf("no snapshot files given")
	}

	results := make([]core.RecordSet, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, err := l.Load(path)
			if err != nil {
				return err
			}
			results[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.RecordSet{}, err
	}

	all := core.Concat(results...)
	l.log.Info("snapshots loaded", "files", len(paths), "records", all.Len())
	return all, nil
}

// Load reads one snapshot file. Rows without a production or expiry date are
// dropped; they are not errors.
func (l *Loader) Load(path string) (core.RecordSet, error) {
	start := time.Now()
	rows, err := readRows(path, l.opts.Sheet)
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("load %s: %w", path, err)
	}
	set, dropped, err := l.parse(filepath.Base(path), rows)
	if err != nil {
		return core.RecordSet{}, err
	}
	l.log.Debug("snapshot parsed",
		"file", path,
		"records", set.Len(),
		"dropped_missing_dates", dropped,
		"elapsed", time.Since(start).String(),
	)
	return set, nil
}

// columns returns the columns to read. required must be in every file:
// the mandatory columns plus the keep list. optional are read when present,
// which happens only when no keep list is configured.
func (l *Loader) columns() (required, optional []core.Column) {
	seen := make(map[core.Column]bool)
	for _, c := range append(append([]core.Column(nil), core.MandatoryColumns...), l.opts.Keep...) {
		if !seen[c] {
			seen[c] = true
			required = append(required, c)
		}
	}
	if len(l.opts.Keep) > 0 {
		return required, nil
	}
	for _, c := range core.SourceColumns {
		if _, ok := l.opts.Headers[c]; ok && !seen[c] {
			optional = append(optional, c)
		}
	}
	return required, optional
}

// headerIndex finds each header of cols in the header row.
func (l *Loader) headerIndex(header []string, cols []core.Column) map[core.Column]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	idx := make(map[core.Column]int, len(cols))
	for _, c := range cols {
		if i, ok := pos[l.opts.Headers[c]]; ok && l.opts.Headers[c] != "" {
			idx[c] = i
		}
	}
	return idx
}

func (l *Loader) parse(file string, rows [][]string) (core.RecordSet, int, error) {
	if len(rows) <= l.opts.HeaderRow {
		return core.RecordSet{}, 0, fmt.Errorf("%s: header row %d beyond end of file (%d rows)", file, l.opts.HeaderRow+1, len(rows))
	}
	required, optional := l.columns()
	idx := l.headerIndex(rows[l.opts.HeaderRow], append(append([]core.Column(nil), required...), optional...))

	// The warehouse code may be derived from the label, so it is never required.
	present := []core.Column{core.ColWarehouseCode}
	for _, c := range required {
		if _, ok := idx[c]; ok {
			present = append(present, c)
			continue
		}
		if c == core.ColWarehouseCode {
			continue
		}
		return core.RecordSet{}, 0, &HeaderError{File: file, Column: c, Header: l.opts.Headers[c]}
	}
	for _, c := range optional {
		if _, ok := idx[c]; ok {
			present = append(present, c)
		}
	}

	var records []core.Record
	dropped := 0
	for n, row := range rows[l.opts.HeaderRow+1:] {
		if blank(row) {
			continue
		}
		rowNum := l.opts.HeaderRow + n + 2
		cell := func(c core.Column) string {
			i, ok := idx[c]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell(core.ColProductionDate) == "" || cell(core.ColExpiryDate) == "" {
			dropped++
			continue
		}
		rec, err := toRecord(cell)
		if err != nil {
			err.File, err.Row = file, rowNum
			return core.RecordSet{}, 0, err
		}
		records = append(records, rec)
	}
	return core.NewRecordSet(records, present...), dropped, nil
}

func toRecord(cell func(core.Column) string) (core.Record, *RowError) {
	r := core.Record{
		Organization:        cell(core.ColOrganization),
		WarehouseLabel:      cell(core.ColWarehouseLabel),
		WarehouseCode:       cell(core.ColWarehouseCode),
		MaterialCode:        cell(core.ColMaterialCode),
		MaterialDescription: cell(core.ColMaterialDescription),
		BatchID:             cell(core.ColBatch),
		Unit:                cell(core.ColUnit),
		DispositionPlan:     cell(core.ColDispositionPlan),
	}
	if r.WarehouseCode == "" {
		r.WarehouseCode = WarehouseCode(r.WarehouseLabel)
	}

	dates := []struct {
		col core.Column
		dst *time.Time
	}{
		{core.ColProductionDate, &r.ProductionDate},
		{core.ColExpiryDate, &r.ExpiryDate},
		{core.ColLastTransactionDate, &r.LastTransactionDate},
	}
	for _, d := range dates {
		t, err := parseDate(cell(d.col))
		if err != nil {
			return r, &RowError{Column: d.col, Value: cell(d.col), Err: err}
		}
		*d.dst = t
	}

	qty, err := parseQuantity(cell(core.ColQuantity))
	if err != nil {
		return r, &RowError{Column: core.ColQuantity, Value: cell(core.ColQuantity), Err: err}
	}
	r.Quantity = qty

	days, err := parseDays(cell(core.ColDaysInStorage))
	if err != nil {
		return r, &RowError{Column: core.ColDaysInStorage, Value: cell(core.ColDaysInStorage), Err: err}
	}
	r.DaysInStorage = days
	return r, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
