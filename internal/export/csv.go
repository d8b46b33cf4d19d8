package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// utf8BOM makes spreadsheet applications detect UTF-8 in the Chinese headers.
const utf8BOM = "\ufeff"

// WriteCSV writes one file per sheet into dir, named "<base>_<sheet>.csv".
// It returns the paths written.
func WriteCSV(dir, base string, doc *Document) ([]string, error) {
	var paths []string
	for _, s := range doc.Sheets {
		path := filepath.Join(dir, base+"_"+s.Name+".csv")
		if err := writeCSVFile(path, s); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, s Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeSheetCSV(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeSheetCSV(w io.Writer, s Sheet) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if len(s.Headers) > 0 {
		if err := cw.Write(safeRow(s.Headers)); err != nil {
			return err
		}
	}
	for _, row := range s.Rows {
		if err := cw.Write(safeRow(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func safeRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = csvSafe(c)
	}
	return out
}

// csvSafe prefixes a single-quote to any cell value that starts with a
// formula-trigger character, preventing CSV injection in spreadsheet apps.
// Negative numbers are left as they are.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '-':
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s
		}
		return "'" + s
	case '=', '+', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
