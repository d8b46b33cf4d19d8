// Package store archives generated reports in Postgres so a later run can
// use them as its prior period.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-aging/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ArchivedReport describes one archived sheet.
type ArchivedReport struct {
	ID        uuid.UUID
	RunID     uuid.UUID
	AsOf      time.Time
	Sheet     string
	LineCount int
	CreatedAt time.Time
}

// ReportArchive stores and retrieves classification reports.
type ReportArchive interface {
	// SaveReport archives the records of one sheet under runID.
	SaveReport(ctx context.Context, runID uuid.UUID, asOf time.Time, sheet string, records core.RecordSet) (*ArchivedReport, error)
	// LoadPrior returns the plans of the latest run with a reference date
	// before asOf, or nil when there is none.
	LoadPrior(ctx context.Context, asOf time.Time) (*core.PriorPeriod, error)
	// ListReports returns the most recent archived sheets, newest first.
	ListReports(ctx context.Context, limit int) ([]ArchivedReport, error)
	// UpdatePlans writes edited disposition plans into the latest run archived
	// for asOf, matching lines by key. It returns that run and the number of
	// lines changed.
	UpdatePlans(ctx context.Context, asOf time.Time, plans map[core.Key]string) (uuid.UUID, int, error)
}

// ErrRunNotFound is returned when no archived run exists for a reference date.
var ErrRunNotFound = errors.New("no archived run for reference date")

type reportArchive struct {
	pool *pgxpool.Pool
}

// NewReportArchive returns an archive backed by pool.
func NewReportArchive(pool *pgxpool.Pool) ReportArchive {
	return &reportArchive{pool: pool}
}

func (s *reportArchive) SaveReport(ctx context.Context, runID uuid.UUID, asOf time.Time, sheet string, records core.RecordSet) (*ArchivedReport, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rep := &ArchivedReport{
		ID:        uuid.New(),
		RunID:     runID,
		AsOf:      core.Day(asOf),
		Sheet:     sheet,
		LineCount: records.Len(),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO inventory_reports (id, run_id, as_of, sheet, line_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rep.ID, rep.RunID, rep.AsOf, rep.Sheet, rep.LineCount,
	).Scan(&rep.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report %s/%s: %w", runID, sheet, err)
	}

	batch := &pgx.Batch{}
	for i, r := range records.Records {
		var expiry *time.Time
		if !r.ExpiryDate.IsZero() {
			d := r.ExpiryDate
			expiry = &d
		}
		batch.Queue(`
			INSERT INTO inventory_report_lines
			    (report_id, line_no, category, disposition_plan, prior_disposition_plan,
			     material_code, batch, warehouse_code, warehouse_label, quantity, expiry_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rep.ID, i+1, string(r.Category), r.DispositionPlan, r.PriorPlan,
			r.MaterialCode, r.BatchID, r.WarehouseCode, r.WarehouseLabel, r.Quantity, expiry,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("failed to insert report lines: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit report: %w", err)
	}
	return rep, nil
}

func (s *reportArchive) LoadPrior(ctx context.Context, asOf time.Time) (*core.PriorPeriod, error) {
	var runID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT run_id FROM inventory_reports
		WHERE as_of < $1
		ORDER BY as_of DESC, created_at DESC
		LIMIT 1`, core.Day(asOf),
	).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find prior run: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT l.material_code, l.batch, l.warehouse_code, l.disposition_plan, l.quantity
		FROM inventory_report_lines l
		JOIN inventory_reports r ON r.id = l.report_id
		WHERE r.run_id = $1
		ORDER BY r.sheet, l.line_no`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prior lines: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var r core.Record
		var qty decimal.Decimal
		if err := rows.Scan(&r.MaterialCode, &r.BatchID, &r.WarehouseCode, &r.DispositionPlan, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan prior line: %w", err)
		}
		r.Quantity = qty
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prior lines: %w", err)
	}
	return core.NewPriorPeriod(records, true), nil
}

func (s *reportArchive) ListReports(ctx context.Context, limit int) ([]ArchivedReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, as_of, sheet, line_count, created_at
		FROM inventory_reports
		ORDER BY as_of DESC, created_at DESC, sheet
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []ArchivedReport
	for rows.Next() {
		var a ArchivedReport
		if err := rows.Scan(&a.ID, &a.RunID, &a.AsOf, &a.Sheet, &a.LineCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *reportArchive) UpdatePlans(ctx context.Context, asOf time.Time, plans map[core.Key]string) (uuid.UUID, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT run_id FROM inventory_reports
		WHERE as_of = $1
		ORDER BY created_at DESC
		LIMIT 1`, core.Day(asOf),
	).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, 0, fmt.Errorf("%w %s", ErrRunNotFound, asOf.Format(core.DateLayout))
	}
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to find run: %w", err)
	}

	batch := &pgx.Batch{}
	for k, plan := range plans {
		batch.Queue(`
			UPDATE inventory_report_lines l
			SET disposition_plan = $1
			FROM inventory_reports r
			WHERE r.id = l.report_id AND r.run_id = $2
			  AND l.material_code = $3 AND l.batch = $4 AND l.warehouse_code = $5`,
			plan, runID, k.MaterialCode, k.BatchID, k.WarehouseCode,
		)
	}
	updated := 0
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return uuid.Nil, 0, fmt.Errorf("failed to update plan: %w", err)
			}
			updated += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return uuid.Nil, 0, fmt.Errorf("failed to update plans: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, 0, fmt.Errorf("failed to commit plans: %w", err)
	}
	return runID, updated, nil
}
