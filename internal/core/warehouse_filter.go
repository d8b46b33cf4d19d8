package core

import "strings"

// WarehouseFilter selects the records of one warehouse class.
//
// A record is admitted when its warehouse code is in Include or its warehouse
// label contains one of IncludeLabels, and is then rejected when its code is
// in Exclude.
type WarehouseFilter struct {
	Include       []string
	IncludeLabels []string
	Exclude       []string
}

// Admits reports whether the filter selects r.
func (f WarehouseFilter) Admits(r Record) bool {
	if containsCode(f.Exclude, r.WarehouseCode) {
		return false
	}
	if containsCode(f.Include, r.WarehouseCode) {
		return true
	}
	for _, l := range f.IncludeLabels {
		if l != "" && strings.Contains(r.WarehouseLabel, l) {
			return true
		}
	}
	return false
}

// Apply returns the subset of set admitted by the filter. An empty result is valid.
func (f WarehouseFilter) Apply(set RecordSet) RecordSet {
	return set.filter(f.Admits)
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
