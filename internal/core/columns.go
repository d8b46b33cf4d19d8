package core

import "sort"

// Column identifies a record field as it appears in snapshots and reports.
type Column string

// Source columns, read from the snapshot extract.
const (
	ColOrganization        Column = "organization"
	ColWarehouseLabel      Column = "warehouse"
	ColWarehouseCode       Column = "warehouse_code"
	ColMaterialCode        Column = "material_code"
	ColMaterialDescription Column = "material_description"
	ColBatch               Column = "batch"
	ColQuantity            Column = "quantity"
	ColUnit                Column = "unit"
	ColProductionDate      Column = "production_date"
	ColExpiryDate          Column = "expiry_date"
	ColLastTransactionDate Column = "last_transaction_date"
	ColDaysInStorage       Column = "days_in_storage"
	ColDispositionPlan     Column = "disposition_plan"
)

// Derived columns, added by pipeline stages.
const (
	ColShelfLifeDays  Column = "shelf_life_days"
	ColRemainingDays  Column = "remaining_days"
	ColRatio          Column = "remaining_ratio"
	ColExpiryCategory Column = "expiry_category"
	ColRecency        Column = "recency_flag"
	ColStorage        Column = "storage_flag"
	ColCategory       Column = "category"
	ColPriorPlan      Column = "prior_disposition_plan"
	ColStorageAge     Column = "storage_age"
)

// SourceColumns lists every column a snapshot extract can supply, in extract order.
var SourceColumns = []Column{
	ColOrganization, ColWarehouseLabel, ColWarehouseCode, ColMaterialCode,
	ColMaterialDescription, ColBatch, ColQuantity, ColUnit, ColProductionDate,
	ColExpiryDate, ColLastTransactionDate, ColDaysInStorage, ColDispositionPlan,
}

// MandatoryColumns must be present in every snapshot for classification to run.
var MandatoryColumns = []Column{
	ColMaterialCode, ColBatch, ColWarehouseLabel, ColProductionDate,
	ColExpiryDate, ColLastTransactionDate, ColDaysInStorage,
}

// ColumnLabels are the header texts used by the EBS on-hand extract and by
// the generated report.
var ColumnLabels = map[Column]string{
	ColOrganization:        "所属组织",
	ColWarehouseLabel:      "仓库",
	ColWarehouseCode:       "仓库编码",
	ColMaterialCode:        "物料编码",
	ColMaterialDescription: "物料描述",
	ColBatch:               "批次",
	ColQuantity:            "现有量",
	ColUnit:                "单位",
	ColProductionDate:      "生产日期",
	ColExpiryDate:          "失效日期",
	ColLastTransactionDate: "最近事务处理时间",
	ColDaysInStorage:       "在库天数",
	ColDispositionPlan:     "处置方案",
	ColShelfLifeDays:       "效期",
	ColRemainingDays:       "剩余效期",
	ColRatio:               "效期占比",
	ColExpiryCategory:      "效期分类",
	ColRecency:             "领用分类",
	ColStorage:             "在库天数分类",
	ColCategory:            "分类",
	ColPriorPlan:           "上期处置方案",
	ColStorageAge:          "库龄",
}

// Label returns the header text for c, falling back to the column ID.
func (c Column) Label() string {
	if l, ok := ColumnLabels[c]; ok {
		return l
	}
	return string(c)
}

// IsSource reports whether c is read from the snapshot rather than derived.
func (c Column) IsSource() bool {
	for _, s := range SourceColumns {
		if s == c {
			return true
		}
	}
	return false
}

// ColumnSet is an immutable set of columns.
type ColumnSet struct {
	m map[Column]struct{}
}

// NewColumnSet returns a set holding cols.
func NewColumnSet(cols ...Column) ColumnSet {
	m := make(map[Column]struct{}, len(cols))
	for _, c := range cols {
		m[c] = struct{}{}
	}
	return ColumnSet{m: m}
}

// Has reports whether c is in the set.
func (s ColumnSet) Has(c Column) bool {
	_, ok := s.m[c]
	return ok
}

// With returns a copy of s with cols added.
func (s ColumnSet) With(cols ...Column) ColumnSet {
	m := make(map[Column]struct{}, len(s.m)+len(cols))
	for c := range s.m {
		m[c] = struct{}{}
	}
	for _, c := range cols {
		m[c] = struct{}{}
	}
	return ColumnSet{m: m}
}

// Intersect returns the columns present in both sets.
func (s ColumnSet) Intersect(o ColumnSet) ColumnSet {
	m := make(map[Column]struct{})
	for c := range s.m {
		if o.Has(c) {
			m[c] = struct{}{}
		}
	}
	return ColumnSet{m: m}
}

// Sorted returns the columns in lexical order.
func (s ColumnSet) Sorted() []Column {
	out := make([]Column, 0, len(s.m))
	for c := range s.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
