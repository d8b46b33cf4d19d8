package snapshot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:04",
}

// parseDate accepts the textual layouts seen in EBS extracts and Excel serial
// day numbers. An empty cell yields the zero time and no error.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseQuantity reads an on-hand quantity, tolerating thousands separators.
func parseQuantity(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseDays reads a whole-day count. Extracts sometimes render it as "12.0".
func parseDays(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}

var warehousePrefix = regexp.MustCompile(`^\s*([^:：\s]+)\s*[:：]`)

// WarehouseCode returns the code of a warehouse label of the form "<code>:name".
// A label without the prefix is its own code.
func WarehouseCode(label string) string {
	if m := warehousePrefix.FindStringSubmatch(label); m != nil {
		return m[1]
	}
	return strings.TrimSpace(label)
}

// unescapeCell undoes the single-quote guard the CSV exporter puts in front
// of formula-trigger characters, so a plan written as "-降价" reads back as
// typed. Only one quote is removed, and only before a trigger character.
func unescapeCell(s string) string {
	if len(s) < 2 || s[0] != '\'' {
		return s
	}
	switch s[1] {
	case '=', '+', '-', '@', '\t', '\r':
		return s[1:]
	}
	return s
}
