package core

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// CategoryOrder is the display order of categories in the report.
var CategoryOrder = []Category{
	CategoryExpired,
	CategoryNoUsage,
	CategoryLongStorage,
	CategoryOutsourced,
	CategoryNearExpiry,
	CategoryWarning,
	CategoryDataQuality,
}

func categoryRank(c Category) int {
	for i, o := range CategoryOrder {
		if o == c {
			return i
		}
	}
	return len(CategoryOrder)
}

// SortByCategory returns the records ordered by CategoryOrder. Records of the
// same category keep their input order.
func SortByCategory(set RecordSet) RecordSet {
	out := set.filter(func(Record) bool { return true })
	sort.SliceStable(out.Records, func(i, j int) bool {
		return categoryRank(out.Records[i].Category) < categoryRank(out.Records[j].Category)
	})
	return out
}

// ReportColumns is the column projection of the classification report.
var ReportColumns = []Column{
	ColCategory,
	ColDispositionPlan,
	ColExpiryCategory,
	ColRecency,
	ColStorage,
	ColRatio,
	ColRemainingDays,
	ColMaterialDescription,
	ColOrganization,
	ColMaterialCode,
	ColWarehouseLabel,
	ColQuantity,
	ColUnit,
	ColDaysInStorage,
	ColBatch,
	ColProductionDate,
	ColExpiryDate,
	ColLastTransactionDate,
	ColWarehouseCode,
}

// priorPlanPosition is the 0-based index of the prior-plan column in the report.
const priorPlanPosition = 7

// ReportColumnsWithPrior returns ReportColumns with the prior-plan column
// inserted as the 8th column.
func ReportColumnsWithPrior() []Column {
	return insertColumn(ReportColumns, priorPlanPosition, ColPriorPlan)
}

func insertColumn(cols []Column, at int, c Column) []Column {
	out := make([]Column, 0, len(cols)+1)
	out = append(out, cols[:at]...)
	out = append(out, c)
	return append(out, cols[at:]...)
}

// ColumnNotFoundError is returned when a projection names a column the
// record set does not carry.
type ColumnNotFoundError struct {
	Column Column
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q (%s) not found in record set", string(e.Column), e.Column.Label())
}

// Table is a plain row/column rendering of a record set.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Headers returns the header label of each column.
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label()
	}
	return out
}

// Project renders set as a table with exactly the given columns, in order.
func Project(set RecordSet, columns []Column) (Table, error) {
	for _, c := range columns {
		if !set.Columns.Has(c) {
			return Table{}, &ColumnNotFoundError{Column: c}
		}
	}
	t := Table{Columns: append([]Column(nil), columns...), Rows: make([][]string, 0, len(set.Records))}
	for _, r := range set.Records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = Cell(r, c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Cell renders one field of r.
func Cell(r Record, c Column) string {
	switch c {
	case ColOrganization:
		return r.Organization
	case ColWarehouseLabel:
		return r.WarehouseLabel
	case ColWarehouseCode:
		return r.WarehouseCode
	case ColMaterialCode:
		return r.MaterialCode
	case ColMaterialDescription:
		return r.MaterialDescription
	case ColBatch:
		return r.BatchID
	case ColQuantity:
		return r.Quantity.String()
	case ColUnit:
		return r.Unit
	case ColProductionDate:
		return formatDate(r.ProductionDate)
	case ColExpiryDate:
		return formatDate(r.ExpiryDate)
	case ColLastTransactionDate:
		return formatDate(r.LastTransactionDate)
	case ColDaysInStorage:
		return strconv.Itoa(r.DaysInStorage)
	case ColDispositionPlan:
		return r.DispositionPlan
	case ColPriorPlan:
		return r.PriorPlan
	case ColShelfLifeDays:
		return strconv.Itoa(r.ShelfLifeDays)
	case ColRemainingDays:
		return strconv.Itoa(r.RemainingDays)
	case ColRatio:
		return r.Ratio.Percent()
	case ColStorageAge:
		return strconv.Itoa(r.StorageAge)
	case ColExpiryCategory:
		return r.Expiry.Label()
	case ColRecency:
		return RecencyLabel(r.Recency, r.RecencyWindow)
	case ColStorage:
		return StorageLabel(r.Storage, r.StorageThreshold)
	case ColCategory:
		return r.Category.Label()
	}
	return ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Label returns the report text of the expiry category.
func (e ExpiryCategory) Label() string {
	switch e {
	case ExpiryExpired:
		return "过效期"
	case ExpiryOneThird:
		return "剩余1/3效期"
	case ExpiryTwoThirds:
		return "剩余2/3效期"
	case ExpiryIndeterminate:
		return "效期异常"
	}
	return ""
}

// Label returns the report text of the category.
func (c Category) Label() string {
	switch c {
	case CategoryExpired:
		return "过期货"
	case CategoryNoUsage:
		return "呆滞品(无领用)"
	case CategoryLongStorage:
		return "呆滞品(在库超期)"
	case CategoryOutsourced:
		return "呆滞品(外协超期)"
	case CategoryNearExpiry:
		return "临期货"
	case CategoryWarning:
		return "预警货"
	case CategoryDataQuality:
		return "数据异常"
	}
	return ""
}

// RecencyLabel returns the report text of a recency flag raised over window days.
func RecencyLabel(f RecencyFlag, window int) string {
	if f != RecencyNoUsage {
		return ""
	}
	return fmt.Sprintf("%d天内无领用", window)
}

// StorageLabel returns the report text of a storage flag raised at threshold days.
func StorageLabel(f StorageFlag, threshold int) string {
	switch f {
	case StorageLong:
		return fmt.Sprintf("≥%d天", threshold)
	case StorageOutsourced:
		return fmt.Sprintf("≥%d天(外协)", threshold)
	}
	return ""
}
