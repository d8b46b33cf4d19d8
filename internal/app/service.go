package app

import (
	"context"
	"time"

	"inventory-aging/internal/store"
)

// ApplicationService is the single interface the CLI adapter calls.
// It decouples presentation from the classification pipeline. Implementations
// must contain no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// RunReport loads the snapshots, classifies the material and finished-goods
	// classes, builds the semi-finished aging view, and writes the monthly
	// workbook. The report is archived when requested.
	RunReport(ctx context.Context, req ReportRequest) (*ReportResult, error)

	// AgingView loads the snapshots and writes only the semi-finished aging view.
	AgingView(ctx context.Context, req AgingRequest) (*AgingResult, error)

	// Legend returns the description sheet for a run with reference date asOf.
	// A zero asOf means the configured reference date.
	Legend(asOf time.Time) *LegendResult

	// Schema returns the JSON Schema of the JSON output document.
	Schema() ([]byte, error)

	// ListArchivedReports returns the most recent archived sheets.
	// It fails when no archive is configured.
	ListArchivedReports(ctx context.Context, limit int) ([]store.ArchivedReport, error)

	// ImportPlans writes the disposition plans of an edited report back into
	// the archived run for its reference date. It fails when no archive is
	// configured.
	ImportPlans(ctx context.Context, req ImportPlansRequest) (*ImportPlansResult, error)
}
