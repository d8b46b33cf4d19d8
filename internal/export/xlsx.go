package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes every sheet of doc into one workbook at path.
func WriteXLSX(path string, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range doc.Sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", s.Name, err)
		}
		if err := writeSheetRows(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheetRows(f *excelize.File, s Sheet) error {
	rowNum := 1
	put := func(cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		rowNum++
		return f.SetSheetRow(s.Name, cell, &row)
	}
	if len(s.Headers) > 0 {
		if err := put(s.Headers); err != nil {
			return err
		}
	}
	for _, r := range s.Rows {
		if err := put(r); err != nil {
			return err
		}
	}
	return nil
}
