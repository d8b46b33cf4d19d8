package core

import "time"

// Day truncates t to its calendar day, in t's own location, expressed in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (b - a), counted on calendar days.
// It uses Unix seconds so sentinel dates such as 9999-12-31 stay exact.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / 86400)
}

// DefaultAsOf returns the last day of the month before now, the usual
// reference date of a month-end stock report.
func DefaultAsOf(now time.Time) time.Time {
	y, m, _ := now.Date()
	// Day 0 of the current month is the last day of the previous one.
	return time.Date(y, m, 0, 0, 0, 0, 0, time.UTC)
}

// ComputeExpiry derives shelf-life span, remaining span, and remaining ratio
// for every record. A zero or negative shelf-life span leaves the ratio undefined.
func ComputeExpiry(set RecordSet, asOf time.Time) RecordSet {
	return set.mapRecords(func(r Record) Record {
		r.ShelfLifeDays = DaysBetween(r.ProductionDate, r.ExpiryDate)
		r.RemainingDays = DaysBetween(asOf, r.ExpiryDate)
		r.Ratio = remainingRatio(r.RemainingDays, r.ShelfLifeDays)
		return r
	}, ColShelfLifeDays, ColRemainingDays, ColRatio)
}

func remainingRatio(remaining, shelfLife int) Ratio {
	if shelfLife <= 0 {
		return Ratio{}
	}
	return Ratio{Value: float64(remaining) / float64(shelfLife), Defined: true}
}
