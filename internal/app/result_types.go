package app

import (
	"time"

	"inventory-aging/internal/core"
	"inventory-aging/internal/store"

	"github.com/google/uuid"
)

// Prior period sources reported in ReportResult.PriorSource.
const (
	PriorNone    = "none"
	PriorFile    = "file"
	PriorArchive = "archive"
)

// ReportResult is returned by RunReport.
type ReportResult struct {
	RunID         uuid.UUID
	AsOf          time.Time
	Loaded        int
	PriorSource   string
	Material      *core.Report
	FinishedGoods *core.Report
	SemiFinished  core.Table
	Outputs       []string
	Archived      []store.ArchivedReport
}

// AgingResult is returned by AgingView.
type AgingResult struct {
	RunID   uuid.UUID
	AsOf    time.Time
	Table   core.Table
	Outputs []string
}

// LegendResult is returned by Legend.
type LegendResult struct {
	AsOf time.Time
	Rows [][]string
}

// ImportPlansResult is returned by ImportPlans.
type ImportPlansResult struct {
	RunID   uuid.UUID
	AsOf    time.Time
	Plans   int // distinct keys read from the file
	Updated int // archived lines changed
}
