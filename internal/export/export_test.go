package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"inventory-aging/internal/core"
	"inventory-aging/internal/export"

	"github.com/xuri/excelize/v2"
)

func sampleDocument() *export.Document {
	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	doc := export.NewDocument("run-1", asOf, asOf, [][]string{{"库存物料说明", ""}, {"2.库存组织", "JKCP"}})
	doc.AddTable(export.SheetMaterial, core.Table{
		Columns: []core.Column{core.ColCategory, core.ColMaterialCode, core.ColQuantity},
		Rows: [][]string{
			{"过期货", "=HYPERLINK(\"x\")", "-5"},
			{"预警货", "M2", "12.5"},
		},
	})
	return doc
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := export.WriteCSV(dir, "2024-06", sampleDocument())
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := []string{
		filepath.Join(dir, "2024-06_说明.csv"),
		filepath.Join(dir, "2024-06_物料.csv"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	b, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	if !strings.HasPrefix(got, "\ufeff分类,物料编码,现有量\n") {
		t.Errorf("missing BOM or header: %q", got)
	}
	if !strings.Contains(got, `'=HYPERLINK(""x"")`) {
		t.Errorf("formula cell not neutralised: %q", got)
	}
	if !strings.Contains(got, ",-5\n") {
		t.Errorf("negative number should be written as is: %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, sampleDocument()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.RunID != "run-1" || doc.AsOf != "2024-06-30" {
		t.Errorf("unexpected metadata %+v", doc)
	}
	sheet, ok := doc.Sheet(export.SheetMaterial)
	if !ok {
		t.Fatal("material sheet missing")
	}
	if sheet.Rows[0][1] != `=HYPERLINK("x")` {
		t.Errorf("JSON cells are not escaped, got %q", sheet.Rows[0][1])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := export.WriteXLSX(path, sampleDocument()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{export.SheetLegend, export.SheetMaterial}) {
		t.Fatalf("sheets = %v", got)
	}
	rows, err := f.GetRows(export.SheetMaterial)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "分类" || rows[2][2] != "12.5" {
		t.Errorf("unexpected rows %v", rows)
	}
	legend, _ := f.GetRows(export.SheetLegend)
	if len(legend) != 2 || legend[1][1] != "JKCP" {
		t.Errorf("unexpected legend %v", legend)
	}
}

func TestWrite_Dispatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := export.Write(export.FormatJSON, dir, "report", sampleDocument())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != 1 || filepath.Ext(paths[0]) != ".json" {
		t.Fatalf("paths = %v", paths)
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"csv", export.FormatCSV, false},
		{" JSON ", export.FormatJSON, false},
		{"", export.FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSchema(t *testing.T) {
	b, err := json.Marshal(export.Schema())
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	for _, field := range []string{`"run_id"`, `"as_of"`, `"sheets"`, `"headers"`} {
		if !bytes.Contains(b, []byte(field)) {
			t.Errorf("schema missing %s: %s", field, b)
		}
	}
}
