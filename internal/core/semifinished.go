package core

import (
	"sort"
	"time"
)

// AgingColumns is the projection of the semi-finished aging view: a blank
// disposition plan first, storage age second, then the snapshot fields.
var AgingColumns = []Column{
	ColDispositionPlan,
	ColStorageAge,
	ColOrganization,
	ColMaterialCode,
	ColMaterialDescription,
	ColWarehouseLabel,
	ColQuantity,
	ColUnit,
	ColBatch,
	ColProductionDate,
	ColExpiryDate,
	ColLastTransactionDate,
	ColDaysInStorage,
	ColWarehouseCode,
}

// ComputeStorageAge sets StorageAge to the days from production to asOf and
// blanks the disposition plan so it can be filled in by hand.
func ComputeStorageAge(set RecordSet, asOf time.Time) RecordSet {
	return set.mapRecords(func(r Record) Record {
		r.StorageAge = DaysBetween(r.ProductionDate, asOf)
		r.DispositionPlan = ""
		return r
	}, ColStorageAge, ColDispositionPlan)
}

// SortByAgeDesc orders records oldest first. Equal ages keep input order.
func SortByAgeDesc(set RecordSet) RecordSet {
	out := set.filter(func(Record) bool { return true })
	sort.SliceStable(out.Records, func(i, j int) bool {
		return out.Records[i].StorageAge > out.Records[j].StorageAge
	})
	return out
}

// SemiFinishedAging builds the semi-finished goods aging view. It does not
// depend on any classification output.
func SemiFinishedAging(set RecordSet, warehouses []string, asOf time.Time) (Table, error) {
	filtered := WarehouseFilter{Include: warehouses}.Apply(set)
	aged := SortByAgeDesc(ComputeStorageAge(filtered, asOf))
	return Project(aged, AgingColumns)
}
