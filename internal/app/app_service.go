package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-aging/internal/config"
	"inventory-aging/internal/core"
	"inventory-aging/internal/export"
	"inventory-aging/internal/logger"
	"inventory-aging/internal/snapshot"
	"inventory-aging/internal/store"

	"github.com/google/uuid"
)

// reportBaseName is the file name of the monthly workbook, without extension.
const reportBaseName = "月末库存呆滞情况"

// agingBaseName is the file name of the stand-alone aging view.
const agingBaseName = "半成品库龄"

// ErrNoArchive is returned by operations that need the report archive when
// no database is configured.
var ErrNoArchive = errors.New("report archive not configured (set DATABASE_URL)")

// ErrNoPlans is returned by ImportPlans when the edited report carries no
// disposition plan column.
var ErrNoPlans = errors.New("report has no disposition plan column")

type appService struct {
	cfg      *config.Config
	loader   *snapshot.Loader
	pipeline *core.Pipeline
	archive  store.ReportArchive
	log      *logger.Logger
	now      func() time.Time
}

// Option customises an appService.
type Option func(*appService)

// WithArchive attaches a report archive.
func WithArchive(a store.ReportArchive) Option {
	return func(s *appService) { s.archive = a }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *appService) { s.now = now }
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(cfg *config.Config, log *logger.Logger, opts ...Option) (ApplicationService, error) {
	pipeline, err := core.NewPipeline(cfg.Rules())
	if err != nil {
		return nil, fmt.Errorf("invalid classification rules: %w", err)
	}
	loader := snapshot.NewLoader(snapshot.Options{
		HeaderRow:      cfg.Snapshot.HeaderRow,
		PriorHeaderRow: cfg.Snapshot.PriorHeaderRow,
		Sheet:          cfg.Snapshot.Sheet,
		Headers:        cfg.Headers(),
		Keep:           cfg.KeepColumns(),
		Workers:        cfg.Loader.Workers,
	}, log)

	s := &appService{
		cfg:      cfg,
		loader:   loader,
		pipeline: pipeline,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func outputFormat(f export.Format) export.Format {
	if f == "" {
		return export.FormatXLSX
	}
	return f
}

func outputDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func (s *appService) referenceDate(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.cfg.ReferenceDate(s.now())
	}
	return core.Day(asOf)
}

// RunReport runs the full monthly classification.
func (s *appService) RunReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if req.Archive || req.PriorFromArchive {
		if s.archive == nil {
			return nil, ErrNoArchive
		}
	}

	runID := uuid.New()
	asOf := s.referenceDate(req.AsOf)
	log := s.log.With("run_id", runID.String(), "as_of", asOf.Format(core.DateLayout))
	log.Info("report run started", "files", len(req.Files))

	set, err := s.loader.LoadAll(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	prior, source, err := s.priorPeriod(ctx, req, asOf)
	if err != nil {
		return nil, err
	}

	material, err := s.pipeline.Report(set, s.cfg.MaterialFilter(), asOf, prior)
	if err != nil {
		return nil, fmt.Errorf("material report: %w", err)
	}
	finished, err := s.pipeline.Report(set, s.cfg.FinishedGoodsFilter(), asOf, prior)
	if err != nil {
		return nil, fmt.Errorf("finished goods report: %w", err)
	}
	semi, err := core.SemiFinishedAging(set, s.cfg.Warehouses.SemiFinished, asOf)
	if err != nil {
		return nil, fmt.Errorf("semi-finished aging: %w", err)
	}

	doc := export.NewDocument(runID.String(), asOf, s.now(), s.legendRows())
	doc.AddTable(export.SheetMaterial, material.Table)
	doc.AddTable(export.SheetFinishedGoods, finished.Table)
	doc.AddTable(export.SheetSemiFinished, semi)

	outputs, err := export.Write(outputFormat(req.Format), outputDir(req.OutDir), reportBaseName, doc)
	if err != nil {
		return nil, err
	}

	res := &ReportResult{
		RunID:         runID,
		AsOf:          asOf,
		Loaded:        set.Len(),
		PriorSource:   source,
		Material:      material,
		FinishedGoods: finished,
		SemiFinished:  semi,
		Outputs:       outputs,
	}

	if req.Archive {
		for _, sheet := range []struct {
			name   string
			report *core.Report
		}{
			{export.SheetMaterial, material},
			{export.SheetFinishedGoods, finished},
		} {
			rep, err := s.archive.SaveReport(ctx, runID, asOf, sheet.name, sheet.report.Records)
			if err != nil {
				return nil, fmt.Errorf("archive %s: %w", sheet.name, err)
			}
			res.Archived = append(res.Archived, *rep)
		}
	}

	log.Info("report run finished",
		"loaded", set.Len(),
		"material", material.Records.Len(),
		"finished_goods", finished.Records.Len(),
		"semi_finished", len(semi.Rows),
		"prior", source,
		"outputs", outputs,
	)
	return res, nil
}

func (s *appService) priorPeriod(ctx context.Context, req ReportRequest, asOf time.Time) (*core.PriorPeriod, string, error) {
	switch {
	case req.PriorFromArchive:
		prior, err := s.archive.LoadPrior(ctx, asOf)
		if err != nil {
			return nil, "", fmt.Errorf("load prior period from archive: %w", err)
		}
		if prior == nil {
			return nil, PriorNone, nil
		}
		return prior, PriorArchive, nil
	case req.PriorFile != "":
		if prior := s.loader.LoadPrior(req.PriorFile); prior != nil {
			return prior, PriorFile, nil
		}
	}
	return nil, PriorNone, nil
}

// AgingView writes the semi-finished aging view on its own.
func (s *appService) AgingView(ctx context.Context, req AgingRequest) (*AgingResult, error) {
	runID := uuid.New()
	asOf := s.referenceDate(req.AsOf)
	log := s.log.With("run_id", runID.String(), "as_of", asOf.Format(core.DateLayout))

	set, err := s.loader.LoadAll(ctx, req.Files)
	if err != nil {
		return nil, err
	}
	table, err := core.SemiFinishedAging(set, s.cfg.Warehouses.SemiFinished, asOf)
	if err != nil {
		return nil, fmt.Errorf("semi-finished aging: %w", err)
	}

	doc := export.NewDocument(runID.String(), asOf, s.now(), s.legendRows())
	doc.AddTable(export.SheetSemiFinished, table)
	outputs, err := export.Write(outputFormat(req.Format), outputDir(req.OutDir), agingBaseName, doc)
	if err != nil {
		return nil, err
	}

	log.Info("aging view written", "rows", len(table.Rows), "outputs", outputs)
	return &AgingResult{RunID: runID, AsOf: asOf, Table: table, Outputs: outputs}, nil
}

// Legend returns the description sheet.
func (s *appService) Legend(asOf time.Time) *LegendResult {
	return &LegendResult{AsOf: s.referenceDate(asOf), Rows: s.legendRows()}
}

func (s *appService) legendRows() [][]string {
	return core.Legend(core.LegendInfo{
		ExtractedAt:   core.DefaultExtractionTime(s.now()),
		Organizations: s.cfg.Legend.Organizations,
		Source:        s.cfg.Legend.Source,
	}, s.pipeline.Rules())
}

// Schema returns the indented JSON Schema of export.Document.
func (s *appService) Schema() ([]byte, error) {
	return json.MarshalIndent(export.Schema(), "", "  ")
}

// ListArchivedReports lists archived sheets, newest first.
func (s *appService) ListArchivedReports(ctx context.Context, limit int) ([]store.ArchivedReport, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.ListReports(ctx, limit)
}

// ImportPlans copies the disposition plans of an edited report into the
// archived run of the same reference date, so the next run from the archive
// carries them forward.
func (s *appService) ImportPlans(ctx context.Context, req ImportPlansRequest) (*ImportPlansResult, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	asOf := s.referenceDate(req.AsOf)

	prior := s.loader.LoadPrior(req.File)
	if prior == nil || !prior.HasPlanColumn {
		return nil, fmt.Errorf("%s: %w", req.File, ErrNoPlans)
	}

	runID, updated, err := s.archive.UpdatePlans(ctx, asOf, prior.Plans)
	if err != nil {
		return nil, fmt.Errorf("import plans: %w", err)
	}
	s.log.Info("disposition plans imported",
		"run_id", runID.String(),
		"as_of", asOf.Format(core.DateLayout),
		"file", req.File,
		"plans", len(prior.Plans),
		"updated", updated,
	)
	return &ImportPlansResult{RunID: runID, AsOf: asOf, Plans: len(prior.Plans), Updated: updated}, nil
}
