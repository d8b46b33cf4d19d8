package core_test

import (
	"errors"
	"testing"

	"inventory-aging/internal/core"

	"github.com/shopspring/decimal"
)

var sourceCols = []core.Column{
	core.ColOrganization, core.ColWarehouseLabel, core.ColWarehouseCode, core.ColMaterialCode,
	core.ColMaterialDescription, core.ColBatch, core.ColQuantity, core.ColUnit,
	core.ColProductionDate, core.ColExpiryDate, core.ColLastTransactionDate, core.ColDaysInStorage,
}

func newPipeline(t *testing.T, outsourced ...string) *core.Pipeline {
	t.Helper()
	rules := core.DefaultRules()
	rules.OutsourcedWarehouses = outsourced
	p, err := core.NewPipeline(rules)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipeline_EndToEndScenario(t *testing.T) {
	p := newPipeline(t)
	filter := core.WarehouseFilter{Include: []string{"W1"}}
	asOf := day(t, "2024-06-01")

	base := core.Record{
		MaterialCode:   "M1",
		BatchID:        "B1",
		WarehouseCode:  "W1",
		Quantity:       decimal.NewFromInt(10),
		ProductionDate: day(t, "2024-01-01"),
		ExpiryDate:     day(t, "2024-07-01"),
	}

	t.Run("recent usage resolves to near expiry", func(t *testing.T) {
		r := base
		r.LastTransactionDate = day(t, "2024-05-20")
		out := p.Classify(core.NewRecordSet([]core.Record{r}, sourceCols...), filter, asOf)
		if out.Len() != 1 {
			t.Fatalf("got %d records, want 1", out.Len())
		}
		got := out.Records[0]
		if got.RemainingDays != 30 {
			t.Errorf("RemainingDays = %d, want 30", got.RemainingDays)
		}
		if got.Ratio.Value < 0.16 || got.Ratio.Value > 0.17 {
			t.Errorf("Ratio = %v, want about 0.165", got.Ratio.Value)
		}
		if got.Expiry != core.ExpiryOneThird {
			t.Errorf("Expiry = %q, want one third", got.Expiry)
		}
		if got.Category != core.CategoryNearExpiry {
			t.Errorf("Category = %q, want near expiry", got.Category)
		}
	})

	t.Run("stale usage resolves to dead stock", func(t *testing.T) {
		r := base
		r.LastTransactionDate = day(t, "2024-01-01")
		out := p.Classify(core.NewRecordSet([]core.Record{r}, sourceCols...), filter, asOf)
		got := out.Records[0]
		if got.Expiry != core.ExpiryOneThird {
			t.Errorf("Expiry = %q, want one third", got.Expiry)
		}
		if got.Recency != core.RecencyNoUsage {
			t.Errorf("Recency = %q, want no usage", got.Recency)
		}
		if got.Category != core.CategoryNoUsage {
			t.Errorf("Category = %q, want dead stock (no usage)", got.Category)
		}
	})
}

func TestPipeline_Report(t *testing.T) {
	p := newPipeline(t, "WX")
	filter := core.WarehouseFilter{Include: []string{"W1", "WX"}}
	asOf := day(t, "2024-06-30")

	rec := func(material, warehouse, production, expiry, lastTx string, days int) core.Record {
		return core.Record{
			MaterialCode:        material,
			BatchID:             "B",
			WarehouseCode:       warehouse,
			WarehouseLabel:      warehouse + ":store",
			MaterialDescription: material + " desc",
			Quantity:            decimal.NewFromInt(1),
			ProductionDate:      day(t, production),
			ExpiryDate:          day(t, expiry),
			LastTransactionDate: day(t, lastTx),
			DaysInStorage:       days,
		}
	}
	set := core.NewRecordSet([]core.Record{
		rec("warn", "W1", "2024-01-01", "2025-01-01", "2024-06-20", 10),
		rec("fresh", "W1", "2024-06-01", "2026-06-01", "2024-06-20", 10),
		rec("expired", "W1", "2023-01-01", "2024-06-01", "2024-06-20", 10),
		rec("outsourced", "WX", "2024-01-01", "2030-01-01", "2024-06-20", 45),
		rec("other-class", "W9", "2023-01-01", "2024-06-01", "2024-06-20", 10),
	}, sourceCols...)
	prior := core.NewPriorPeriod([]core.Record{keyed("expired", "B", "W1", "scrap")}, true)

	report, err := p.Report(set, filter, asOf, prior)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	materialIdx, priorIdx := -1, -1
	for i, c := range report.Table.Columns {
		switch c {
		case core.ColMaterialCode:
			materialIdx = i
		case core.ColPriorPlan:
			priorIdx = i
		}
	}
	want := []string{"expired", "outsourced", "warn"}
	if len(report.Table.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(report.Table.Rows), len(want))
	}
	for i, row := range report.Table.Rows {
		if row[materialIdx] != want[i] {
			t.Errorf("row %d material = %s, want %s", i, row[materialIdx], want[i])
		}
	}
	if got := report.Table.Rows[0][priorIdx]; got != "scrap" {
		t.Errorf("prior plan of expired row = %q, want scrap", got)
	}

	summary := report.Summary()
	if summary[core.CategoryExpired] != 1 || summary[core.CategoryOutsourced] != 1 || summary[core.CategoryWarning] != 1 {
		t.Errorf("unexpected summary %v", summary)
	}
}

func TestPipeline_ReportFailsOnMissingColumn(t *testing.T) {
	p := newPipeline(t)
	rec := core.Record{
		MaterialCode:   "M1",
		WarehouseCode:  "W1",
		ProductionDate: day(t, "2023-01-01"),
		ExpiryDate:     day(t, "2024-01-01"),
	}
	var cols []core.Column
	for _, c := range sourceCols {
		if c != core.ColMaterialDescription {
			cols = append(cols, c)
		}
	}

	_, err := p.Report(core.NewRecordSet([]core.Record{rec}, cols...),
		core.WarehouseFilter{Include: []string{"W1"}}, day(t, "2024-06-30"), nil)

	var notFound *core.ColumnNotFoundError
	if !errors.As(err, &notFound) || notFound.Column != core.ColMaterialDescription {
		t.Fatalf("expected missing %s, got %v", core.ColMaterialDescription, err)
	}
}

func TestPipeline_DegenerateSpanIsDataQuality(t *testing.T) {
	p := newPipeline(t)
	rec := core.Record{
		MaterialCode:        "M1",
		WarehouseCode:       "W1",
		ProductionDate:      day(t, "2024-05-01"),
		ExpiryDate:          day(t, "2024-05-01"),
		LastTransactionDate: day(t, "2024-06-20"),
	}
	out := p.Classify(core.NewRecordSet([]core.Record{rec}, sourceCols...),
		core.WarehouseFilter{Include: []string{"W1"}}, day(t, "2024-06-30"))

	if out.Len() != 1 {
		t.Fatalf("degenerate record was dropped")
	}
	if got := out.Records[0]; got.Ratio.Defined || got.Category != core.CategoryDataQuality {
		t.Errorf("got ratio %+v category %q, want undefined ratio and data quality", got.Ratio, got.Category)
	}
}
