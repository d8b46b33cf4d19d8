package core_test

import (
	"math"
	"testing"
	"time"

	"inventory-aging/internal/core"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(core.DateLayout, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestComputeExpiry_Spans(t *testing.T) {
	tests := []struct {
		name          string
		production    string
		expiry        string
		asOf          string
		wantShelfLife int
		wantRemaining int
		wantDefined   bool
	}{
		{"half year, leap February", "2024-01-01", "2024-07-01", "2024-06-01", 182, 30, true},
		{"already expired", "2023-01-01", "2024-01-01", "2024-01-31", 365, -30, true},
		{"expires on as-of date", "2024-01-01", "2024-03-01", "2024-03-01", 60, 0, true},
		{"zero span", "2024-05-01", "2024-05-01", "2024-06-01", 0, -31, false},
		{"negative span", "2024-05-10", "2024-05-01", "2024-04-01", -9, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := core.NewRecordSet([]core.Record{{
				ProductionDate: day(t, tt.production),
				ExpiryDate:     day(t, tt.expiry),
			}}, core.ColProductionDate, core.ColExpiryDate)

			out := core.ComputeExpiry(in, day(t, tt.asOf))
			r := out.Records[0]

			if r.ShelfLifeDays != tt.wantShelfLife {
				t.Errorf("ShelfLifeDays = %d, want %d", r.ShelfLifeDays, tt.wantShelfLife)
			}
			if r.RemainingDays != tt.wantRemaining {
				t.Errorf("RemainingDays = %d, want %d", r.RemainingDays, tt.wantRemaining)
			}
			if r.Ratio.Defined != tt.wantDefined {
				t.Fatalf("Ratio.Defined = %v, want %v", r.Ratio.Defined, tt.wantDefined)
			}
			if tt.wantDefined {
				want := float64(tt.wantRemaining) / float64(tt.wantShelfLife)
				if math.Abs(r.Ratio.Value-want) > 1e-12 {
					t.Errorf("Ratio = %v, want %v", r.Ratio.Value, want)
				}
			}
			for _, c := range []core.Column{core.ColShelfLifeDays, core.ColRemainingDays, core.ColRatio} {
				if !out.Columns.Has(c) {
					t.Errorf("derived column %s missing", c)
				}
			}
		})
	}
}

func TestComputeExpiry_DoesNotMutateInput(t *testing.T) {
	in := core.NewRecordSet([]core.Record{{
		ProductionDate: day(t, "2024-01-01"),
		ExpiryDate:     day(t, "2024-12-31"),
	}}, core.ColProductionDate, core.ColExpiryDate)

	_ = core.ComputeExpiry(in, day(t, "2024-06-30"))

	if in.Records[0].ShelfLifeDays != 0 || in.Records[0].Ratio.Defined {
		t.Errorf("input record was modified: %+v", in.Records[0])
	}
	if in.Columns.Has(core.ColRatio) {
		t.Errorf("input column set was modified")
	}
}

func TestComputeExpiry_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	in := core.NewRecordSet([]core.Record{{
		ProductionDate: time.Date(2024, 1, 1, 23, 59, 0, 0, loc),
		ExpiryDate:     time.Date(2024, 1, 31, 0, 1, 0, 0, loc),
	}})
	out := core.ComputeExpiry(in, time.Date(2024, 1, 21, 18, 0, 0, 0, loc))
	if got := out.Records[0].ShelfLifeDays; got != 30 {
		t.Errorf("ShelfLifeDays = %d, want 30", got)
	}
	if got := out.Records[0].RemainingDays; got != 10 {
		t.Errorf("RemainingDays = %d, want 10", got)
	}
}

func TestDefaultAsOf(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), "2024-02-29"},
		{time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "2024-12-31"},
		{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "2024-04-30"},
	}
	for _, tt := range tests {
		if got := core.DefaultAsOf(tt.now).Format(core.DateLayout); got != tt.want {
			t.Errorf("DefaultAsOf(%s) = %s, want %s", tt.now.Format(core.DateLayout), got, tt.want)
		}
	}
}

func TestRatio_Percent(t *testing.T) {
	if got := (core.Ratio{Value: 30.0 / 181.0, Defined: true}).Percent(); got != "16.57%" {
		t.Errorf("Percent = %q, want 16.57%%", got)
	}
	if got := (core.Ratio{}).Percent(); got != "" {
		t.Errorf("undefined ratio Percent = %q, want empty", got)
	}
}

func TestDaysBetween_FarFutureSentinels(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01-01", "9999-12-31", 2913173},
		{"9999-12-31", "2024-01-01", -2913173},
		{"2024-06-30", "4712-12-31", 981955},
		{"2024-02-28", "2024-03-01", 2},
	}
	for _, tt := range tests {
		if got := core.DaysBetween(day(t, tt.a), day(t, tt.b)); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
