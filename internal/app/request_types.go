package app

import (
	"time"

	"inventory-aging/internal/export"
)

// ReportRequest is the input for RunReport.
type ReportRequest struct {
	Files            []string
	AsOf             time.Time // zero means the configured reference date
	PriorFile        string    // last period's report; empty for none
	PriorFromArchive bool      // read the prior period from the archive instead of PriorFile
	Format           export.Format
	OutDir           string
	Archive          bool
}

// AgingRequest is the input for AgingView.
type AgingRequest struct {
	Files  []string
	AsOf   time.Time
	Format export.Format
	OutDir string
}

// ImportPlansRequest is the input for ImportPlans.
type ImportPlansRequest struct {
	File string    // edited report, xlsx or a per-sheet csv
	AsOf time.Time // reference date of the archived run; zero means the configured one
}
