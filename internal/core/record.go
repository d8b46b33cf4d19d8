package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the rendering used for every date cell in a report.
const DateLayout = "2006-01-02"

// Key is the identity of a record within one snapshot and the join key used
// to carry disposition plans from one period to the next.
type Key struct {
	MaterialCode  string
	BatchID       string
	WarehouseCode string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.MaterialCode, k.BatchID, k.WarehouseCode)
}

// ExpiryCategory buckets a record by the share of shelf life it has left.
type ExpiryCategory string

const (
	ExpiryNone          ExpiryCategory = ""
	ExpiryExpired       ExpiryCategory = "expired"
	ExpiryOneThird      ExpiryCategory = "one_third_remaining"
	ExpiryTwoThirds     ExpiryCategory = "two_thirds_remaining"
	ExpiryIndeterminate ExpiryCategory = "indeterminate"
)

// RecencyFlag marks stock without an inventory transaction inside the recency window.
type RecencyFlag string

const (
	RecencyNone    RecencyFlag = ""
	RecencyNoUsage RecencyFlag = "no_recent_usage"
)

// StorageFlag marks stock held longer than its warehouse class allows.
type StorageFlag string

const (
	StorageNone       StorageFlag = ""
	StorageLong       StorageFlag = "long_storage"
	StorageOutsourced StorageFlag = "outsourced_storage"
)

// Category is the single disposition category a record resolves to.
type Category string

const (
	CategoryNone        Category = ""
	CategoryExpired     Category = "expired"
	CategoryNoUsage     Category = "dead_stock_no_usage"
	CategoryLongStorage Category = "dead_stock_long_storage"
	CategoryOutsourced  Category = "dead_stock_outsourced_storage"
	CategoryNearExpiry  Category = "near_expiry"
	CategoryWarning     Category = "warning"
	CategoryDataQuality Category = "data_quality"
)

// Ratio is remaining shelf life over total shelf life. Defined is false when
// the shelf-life span is zero or negative and no meaningful ratio exists.
type Ratio struct {
	Value   float64
	Defined bool
}

// Percent renders the ratio the way the report shows it, e.g. "16.57%".
// An undefined ratio renders as an empty cell.
func (r Ratio) Percent() string {
	if !r.Defined {
		return ""
	}
	return strconv.FormatFloat(r.Value*100, 'f', 2, 64) + "%"
}

// Record is one material/batch/warehouse line of an inventory snapshot plus
// the fields derived from it by the classification pipeline.
type Record struct {
	Organization        string
	WarehouseLabel      string
	WarehouseCode       string
	MaterialCode        string
	MaterialDescription string
	BatchID             string
	Quantity            decimal.Decimal
	Unit                string
	ProductionDate      time.Time
	ExpiryDate          time.Time
	LastTransactionDate time.Time // zero when the extract has none
	DaysInStorage       int

	ShelfLifeDays int
	RemainingDays int
	Ratio         Ratio
	StorageAge    int

	Expiry           ExpiryCategory
	Recency          RecencyFlag
	RecencyWindow    int // window used when Recency was set
	Storage          StorageFlag
	StorageThreshold int // threshold crossed when Storage was set
	Category         Category

	DispositionPlan string
	PriorPlan       string
}

// Key returns the record's identity key.
func (r Record) Key() Key {
	return Key{MaterialCode: r.MaterialCode, BatchID: r.BatchID, WarehouseCode: r.WarehouseCode}
}

// HasSignal reports whether any of the three classification signals is set.
func (r Record) HasSignal() bool {
	return r.Expiry != ExpiryNone || r.Recency != RecencyNone || r.Storage != StorageNone
}

// RecordSet is an ordered batch of records together with the set of columns
// they carry. Stages never modify a RecordSet they receive; they return a new one.
type RecordSet struct {
	Columns ColumnSet
	Records []Record
}

// NewRecordSet builds a set carrying the given columns.
func NewRecordSet(records []Record, columns ...Column) RecordSet {
	return RecordSet{Columns: NewColumnSet(columns...), Records: records}
}

// Len returns the number of records.
func (s RecordSet) Len() int { return len(s.Records) }

// mapRecords returns a new set whose records are f applied to each record of s,
// with the extra columns added to the column set.
func (s RecordSet) mapRecords(f func(Record) Record, added ...Column) RecordSet {
	out := make([]Record, len(s.Records))
	for i, r := range s.Records {
		out[i] = f(r)
	}
	return RecordSet{Columns: s.Columns.With(added...), Records: out}
}

// filter returns a new set holding the records for which keep returns true.
func (s RecordSet) filter(keep func(Record) bool) RecordSet {
	out := make([]Record, 0, len(s.Records))
	for _, r := range s.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return RecordSet{Columns: s.Columns.With(), Records: out}
}

// Concat joins record sets in order. The result carries only columns present
// in every input, since a column missing from one file is missing for the batch.
func Concat(sets ...RecordSet) RecordSet {
	if len(sets) == 0 {
		return RecordSet{Columns: NewColumnSet()}
	}
	cols := sets[0].Columns.With()
	total := 0
	for _, s := range sets {
		total += len(s.Records)
		cols = cols.Intersect(s.Columns)
	}
	out := make([]Record, 0, total)
	for _, s := range sets {
		out = append(out, s.Records...)
	}
	return RecordSet{Columns: cols, Records: out}
}
