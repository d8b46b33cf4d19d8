package core_test

import (
	"testing"

	"inventory-aging/internal/core"
)

func withSpan(remaining, shelfLife int) core.Record {
	r := core.Record{RemainingDays: remaining, ShelfLifeDays: shelfLife}
	if shelfLife > 0 {
		r.Ratio = core.Ratio{Value: float64(remaining) / float64(shelfLife), Defined: true}
	}
	return r
}

func TestClassifyExpiry_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		shelfLife int
		want      core.ExpiryCategory
	}{
		{"past expiry", -5, 300, core.ExpiryExpired},
		{"ratio exactly 0", 0, 300, core.ExpiryExpired},
		{"just above 0", 1, 300, core.ExpiryOneThird},
		{"ratio exactly 1/3", 100, 300, core.ExpiryOneThird},
		{"just above 1/3", 101, 300, core.ExpiryTwoThirds},
		{"ratio exactly 2/3", 200, 300, core.ExpiryTwoThirds},
		{"just above 2/3", 201, 300, core.ExpiryNone},
		{"ratio 1", 300, 300, core.ExpiryNone},
		{"1/3 on a span not divisible by 3", 61, 182, core.ExpiryTwoThirds},
		{"zero span", 10, 0, core.ExpiryIndeterminate},
		{"negative span", 10, -3, core.ExpiryIndeterminate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.ClassifyExpiry(withSpan(tt.remaining, tt.shelfLife)); got != tt.want {
				t.Errorf("ClassifyExpiry(%d/%d) = %q, want %q", tt.remaining, tt.shelfLife, got, tt.want)
			}
		})
	}
}

func TestClassifyRecency(t *testing.T) {
	asOf := day(t, "2024-06-30")
	tests := []struct {
		name   string
		lastTx string
		want   core.RecencyFlag
	}{
		{"exactly 90 days", "2024-04-01", core.RecencyNoUsage},
		{"89 days", "2024-04-02", core.RecencyNone},
		{"long ago", "2023-01-01", core.RecencyNoUsage},
		{"no transaction date", "", core.RecencyNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := core.Record{}
			if tt.lastTx != "" {
				r.LastTransactionDate = day(t, tt.lastTx)
			}
			out := core.ClassifyRecency(core.NewRecordSet([]core.Record{r}), asOf, 90)
			got := out.Records[0]
			if got.Recency != tt.want {
				t.Errorf("Recency = %q, want %q", got.Recency, tt.want)
			}
			if tt.want == core.RecencyNoUsage && got.RecencyWindow != 90 {
				t.Errorf("RecencyWindow = %d, want 90", got.RecencyWindow)
			}
		})
	}
}

func TestClassifyStorage_OutsourcedAsymmetry(t *testing.T) {
	rules := core.DefaultRules()
	rules.OutsourcedWarehouses = []string{"WX01"}

	tests := []struct {
		name          string
		warehouse     string
		daysInStorage int
		want          core.StorageFlag
		wantThreshold int
	}{
		{"outsourced at 30", "WX01", 30, core.StorageOutsourced, 30},
		{"outsourced at 29", "WX01", 29, core.StorageNone, 0},
		{"outsourced beyond 180 stays outsourced", "WX01", 400, core.StorageOutsourced, 30},
		{"standard at 30", "W100", 30, core.StorageNone, 0},
		{"standard at 179", "W100", 179, core.StorageNone, 0},
		{"standard at 180", "W100", 180, core.StorageLong, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := core.NewRecordSet([]core.Record{{WarehouseCode: tt.warehouse, DaysInStorage: tt.daysInStorage}})
			got := core.ClassifyStorage(in, rules).Records[0]
			if got.Storage != tt.want {
				t.Errorf("Storage = %q, want %q", got.Storage, tt.want)
			}
			if got.StorageThreshold != tt.wantThreshold {
				t.Errorf("StorageThreshold = %d, want %d", got.StorageThreshold, tt.wantThreshold)
			}
		})
	}
}

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		expiry  core.ExpiryCategory
		recency core.RecencyFlag
		storage core.StorageFlag
		want    core.Category
	}{
		{"expired beats no usage", core.ExpiryExpired, core.RecencyNoUsage, core.StorageLong, core.CategoryExpired},
		{"expired alone", core.ExpiryExpired, core.RecencyNone, core.StorageNone, core.CategoryExpired},
		{"no usage beats long storage", core.ExpiryNone, core.RecencyNoUsage, core.StorageLong, core.CategoryNoUsage},
		{"no usage beats near expiry", core.ExpiryOneThird, core.RecencyNoUsage, core.StorageNone, core.CategoryNoUsage},
		{"long storage", core.ExpiryTwoThirds, core.RecencyNone, core.StorageLong, core.CategoryLongStorage},
		{"outsourced storage", core.ExpiryOneThird, core.RecencyNone, core.StorageOutsourced, core.CategoryOutsourced},
		{"dead stock beats indeterminate", core.ExpiryIndeterminate, core.RecencyNoUsage, core.StorageNone, core.CategoryNoUsage},
		{"indeterminate alone", core.ExpiryIndeterminate, core.RecencyNone, core.StorageNone, core.CategoryDataQuality},
		{"near expiry", core.ExpiryOneThird, core.RecencyNone, core.StorageNone, core.CategoryNearExpiry},
		{"warning", core.ExpiryTwoThirds, core.RecencyNone, core.StorageNone, core.CategoryWarning},
		{"no signal", core.ExpiryNone, core.RecencyNone, core.StorageNone, core.CategoryNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := core.Record{Expiry: tt.expiry, Recency: tt.recency, Storage: tt.storage}
			if got := core.Resolve(r); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompositeRules_Order(t *testing.T) {
	want := []core.Category{
		core.CategoryExpired,
		core.CategoryNoUsage,
		core.CategoryLongStorage,
		core.CategoryOutsourced,
		core.CategoryDataQuality,
		core.CategoryNearExpiry,
		core.CategoryWarning,
	}
	if len(core.CompositeRules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(core.CompositeRules), len(want))
	}
	for i, rule := range core.CompositeRules {
		if rule.Category != want[i] {
			t.Errorf("rule %d = %q, want %q", i, rule.Category, want[i])
		}
	}
}

func TestDropUnflagged(t *testing.T) {
	in := core.NewRecordSet([]core.Record{
		{MaterialCode: "keep-expiry", Expiry: core.ExpiryTwoThirds},
		{MaterialCode: "drop"},
		{MaterialCode: "keep-recency", Recency: core.RecencyNoUsage},
		{MaterialCode: "keep-storage", Storage: core.StorageLong},
		{MaterialCode: "keep-indeterminate", Expiry: core.ExpiryIndeterminate},
	})
	out := core.DropUnflagged(in)
	if out.Len() != 4 {
		t.Fatalf("got %d records, want 4", out.Len())
	}
	for _, r := range out.Records {
		if r.MaterialCode == "drop" {
			t.Errorf("unflagged record survived")
		}
	}
}

func TestRules_Validate(t *testing.T) {
	if err := core.DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
	bad := core.Rules{RecencyDays: 0, OutsourcedStorageDays: -1, StandardStorageDays: 180}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-positive thresholds")
	}
	if _, err := core.NewPipeline(bad); err == nil {
		t.Error("NewPipeline accepted invalid rules")
	}
}
