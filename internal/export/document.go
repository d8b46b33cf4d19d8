package export

import (
	"time"

	"inventory-aging/internal/core"
)

// Sheet names of the monthly workbook, in output order.
const (
	SheetLegend        = "说明"
	SheetMaterial      = "物料"
	SheetFinishedGoods = "成品"
	SheetSemiFinished  = "半成品"
)

// Sheet is one output table.
type Sheet struct {
	Name    string     `json:"name" jsonschema_description:"Sheet name, one of 说明, 物料, 成品, 半成品"`
	Headers []string   `json:"headers" jsonschema_description:"Column header labels; empty for the description sheet"`
	Rows    [][]string `json:"rows" jsonschema_description:"Rendered cell values, one slice per row, aligned with headers"`
}

// Document is everything a run writes: the description sheet followed by
// one sheet per warehouse class.
type Document struct {
	RunID       string  `json:"run_id" jsonschema_description:"Identifier of the run that produced this document"`
	AsOf        string  `json:"as_of" jsonschema_description:"Reference date of the classification, YYYY-MM-DD"`
	GeneratedAt string  `json:"generated_at" jsonschema_description:"RFC 3339 timestamp of document creation"`
	Sheets      []Sheet `json:"sheets"`
}

// NewDocument starts a document holding the description sheet.
func NewDocument(runID string, asOf, now time.Time, legend [][]string) *Document {
	return &Document{
		RunID:       runID,
		AsOf:        asOf.Format(core.DateLayout),
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Sheets:      []Sheet{{Name: SheetLegend, Rows: legend}},
	}
}

// AddTable appends t as a sheet named name.
func (d *Document) AddTable(name string, t core.Table) {
	d.Sheets = append(d.Sheets, Sheet{Name: name, Headers: t.Headers(), Rows: t.Rows})
}

// Sheet returns the sheet called name.
func (d *Document) Sheet(name string) (Sheet, bool) {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}
