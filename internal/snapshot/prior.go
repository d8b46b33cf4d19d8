package snapshot

import (
	"strings"

	"inventory-aging/internal/core"
)

// LoadPrior reads last period's report. Every sheet of a workbook is scanned
// and the qualifying ones are merged, the first occurrence of a key winning.
// The prior period is optional input: a file that cannot be read or where no
// sheet has the identity columns yields nil, which the merger treats as "no
// prior data".
func (l *Loader) LoadPrior(path string) *core.PriorPeriod {
	if path == "" {
		return nil
	}
	sheets, err := readAllSheets(path)
	if err != nil {
		l.log.Warn("prior period unreadable, continuing without it", "file", path, "error", err)
		return nil
	}

	var (
		records []core.Record
		hasPlan bool
		matched int
		missing []core.Column
	)
	for _, rows := range sheets {
		recs, plan, miss := l.parsePrior(rows)
		if miss != nil {
			missing = miss
			continue
		}
		matched++
		// Only sheets with a plan column claim keys.
		if plan {
			records = append(records, recs...)
			hasPlan = true
		}
	}
	if matched == 0 {
		l.log.Warn("prior period has no identity columns, continuing without it", "file", path, "missing", missing)
		return nil
	}
	prior := core.NewPriorPeriod(records, hasPlan)
	l.log.Info("prior period loaded",
		"file", path,
		"sheets", matched,
		"plans", len(prior.Plans),
		"has_plan_column", prior.HasPlanColumn,
	)
	return prior
}

// parsePrior extracts identity and plan from one sheet. A non-nil missing
// list means the sheet does not qualify.
func (l *Loader) parsePrior(rows [][]string) (records []core.Record, hasPlan bool, missing []core.Column) {
	if len(rows) <= l.opts.PriorHeaderRow {
		return nil, false, []core.Column{core.ColMaterialCode, core.ColBatch, core.ColWarehouseCode}
	}
	idx := l.headerIndex(rows[l.opts.PriorHeaderRow], []core.Column{
		core.ColMaterialCode, core.ColBatch, core.ColWarehouseCode, core.ColWarehouseLabel, core.ColDispositionPlan,
	})

	for _, c := range []core.Column{core.ColMaterialCode, core.ColBatch} {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	_, hasCode := idx[core.ColWarehouseCode]
	_, hasLabel := idx[core.ColWarehouseLabel]
	if !hasCode && !hasLabel {
		missing = append(missing, core.ColWarehouseCode)
	}
	if len(missing) > 0 {
		return nil, false, missing
	}

	_, hasPlan = idx[core.ColDispositionPlan]
	for _, row := range rows[l.opts.PriorHeaderRow+1:] {
		if blank(row) {
			continue
		}
		cell := func(c core.Column) string {
			i, ok := idx[c]
			if !ok || i >= len(row) {
				return ""
			}
			return unescapeCell(strings.TrimSpace(row[i]))
		}
		code := cell(core.ColWarehouseCode)
		if code == "" {
			code = WarehouseCode(cell(core.ColWarehouseLabel))
		}
		records = append(records, core.Record{
			MaterialCode:    cell(core.ColMaterialCode),
			BatchID:         cell(core.ColBatch),
			WarehouseCode:   code,
			DispositionPlan: cell(core.ColDispositionPlan),
		})
	}
	return records, hasPlan, nil
}
