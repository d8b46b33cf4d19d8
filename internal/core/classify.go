package core

import (
	"errors"
	"fmt"
	"time"
)

// Default thresholds, in days.
const (
	DefaultRecencyDays           = 90
	DefaultOutsourcedStorageDays = 30
	DefaultStandardStorageDays   = 180
)

// Rules holds the thresholds and warehouse sets the classifiers depend on.
type Rules struct {
	RecencyDays           int
	OutsourcedStorageDays int
	StandardStorageDays   int
	OutsourcedWarehouses  []string
}

// DefaultRules returns the thresholds of the month-end stock review with no
// outsourced warehouses configured.
func DefaultRules() Rules {
	return Rules{
		RecencyDays:           DefaultRecencyDays,
		OutsourcedStorageDays: DefaultOutsourcedStorageDays,
		StandardStorageDays:   DefaultStandardStorageDays,
	}
}

// Validate checks that every threshold is positive.
func (r Rules) Validate() error {
	var errs []error
	if r.RecencyDays <= 0 {
		errs = append(errs, fmt.Errorf("recency threshold must be > 0, got %d", r.RecencyDays))
	}
	if r.OutsourcedStorageDays <= 0 {
		errs = append(errs, fmt.Errorf("outsourced storage threshold must be > 0, got %d", r.OutsourcedStorageDays))
	}
	if r.StandardStorageDays <= 0 {
		errs = append(errs, fmt.Errorf("standard storage threshold must be > 0, got %d", r.StandardStorageDays))
	}
	return errors.Join(errs...)
}

// ClassifyExpiry buckets a record by remaining ratio. Boundaries are inclusive
// on the low side: exactly 0 is expired, exactly 1/3 is one-third remaining,
// exactly 2/3 is two-thirds remaining.
//
// The comparison is done on the day counts (remaining*3 against shelfLife)
// so the 1/3 and 2/3 boundaries are exact.
func ClassifyExpiry(r Record) ExpiryCategory {
	if !r.Ratio.Defined {
		return ExpiryIndeterminate
	}
	rem, span := r.RemainingDays, r.ShelfLifeDays
	switch {
	case rem <= 0:
		return ExpiryExpired
	case 3*rem <= span:
		return ExpiryOneThird
	case 3*rem <= 2*span:
		return ExpiryTwoThirds
	default:
		return ExpiryNone
	}
}

// ClassifyExpiryCategory sets the expiry category on every record.
func ClassifyExpiryCategory(set RecordSet) RecordSet {
	return set.mapRecords(func(r Record) Record {
		r.Expiry = ClassifyExpiry(r)
		return r
	}, ColExpiryCategory)
}

// ClassifyRecency flags records whose last inventory transaction is at least
// windowDays before asOf. Records without a transaction date are not flagged.
func ClassifyRecency(set RecordSet, asOf time.Time, windowDays int) RecordSet {
	return set.mapRecords(func(r Record) Record {
		r.Recency, r.RecencyWindow = RecencyNone, 0
		if !r.LastTransactionDate.IsZero() && DaysBetween(r.LastTransactionDate, asOf) >= windowDays {
			r.Recency, r.RecencyWindow = RecencyNoUsage, windowDays
		}
		return r
	}, ColRecency)
}

// ClassifyStorage flags records held too long for their warehouse class.
// The outsourced check runs first: an outsourced warehouse is flagged at the
// lower outsourced threshold even though the standard one is higher.
func ClassifyStorage(set RecordSet, rules Rules) RecordSet {
	return set.mapRecords(func(r Record) Record {
		r.Storage, r.StorageThreshold = StorageNone, 0
		switch {
		case containsCode(rules.OutsourcedWarehouses, r.WarehouseCode) && r.DaysInStorage >= rules.OutsourcedStorageDays:
			r.Storage, r.StorageThreshold = StorageOutsourced, rules.OutsourcedStorageDays
		case r.DaysInStorage >= rules.StandardStorageDays:
			r.Storage, r.StorageThreshold = StorageLong, rules.StandardStorageDays
		}
		return r
	}, ColStorage)
}

// CompositeRule maps records matching Match to Category.
type CompositeRule struct {
	Category Category
	Match    func(Record) bool
}

func noDeadStockSignal(r Record) bool {
	return r.Recency == RecencyNone && r.Storage == StorageNone
}

// CompositeRules is the precedence order of disposition categories. The first
// rule that matches decides the category; later rules are not consulted.
var CompositeRules = []CompositeRule{
	{CategoryExpired, func(r Record) bool { return r.Expiry == ExpiryExpired }},
	{CategoryNoUsage, func(r Record) bool { return r.Recency == RecencyNoUsage }},
	{CategoryLongStorage, func(r Record) bool { return r.Storage == StorageLong }},
	{CategoryOutsourced, func(r Record) bool { return r.Storage == StorageOutsourced }},
	{CategoryDataQuality, func(r Record) bool { return r.Expiry == ExpiryIndeterminate }},
	{CategoryNearExpiry, func(r Record) bool { return r.Expiry == ExpiryOneThird && noDeadStockSignal(r) }},
	{CategoryWarning, func(r Record) bool { return r.Expiry == ExpiryTwoThirds && noDeadStockSignal(r) }},
}

// Resolve returns the category of the first matching rule, or CategoryNone.
func Resolve(r Record) Category {
	for _, rule := range CompositeRules {
		if rule.Match(r) {
			return rule.Category
		}
	}
	return CategoryNone
}

// ClassifyComposite resolves every record to its single disposition category.
func ClassifyComposite(set RecordSet) RecordSet {
	return set.mapRecords(func(r Record) Record {
		r.Category = Resolve(r)
		return r
	}, ColCategory)
}

// DropUnflagged removes records that carry no expiry, recency, or storage signal.
func DropUnflagged(set RecordSet) RecordSet {
	return set.filter(Record.HasSignal)
}
