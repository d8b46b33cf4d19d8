package core_test

import (
	"testing"
	"time"

	"inventory-aging/internal/core"
)

func TestLegend_ExtractionStamp(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC), "2024年07月01日 上午08点30分"},
		{time.Date(2024, 7, 1, 14, 5, 0, 0, time.UTC), "2024年07月01日 下午02点05分"},
		{time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), "2024年12月31日 下午12点00分"},
		{time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC), "2024年01月02日 上午12点15分"},
	}
	for _, tt := range tests {
		rows := core.Legend(core.LegendInfo{ExtractedAt: tt.at}, core.DefaultRules())
		if got := rows[1][1]; got != tt.want {
			t.Errorf("stamp for %s = %q, want %q", tt.at.Format(time.Kitchen), got, tt.want)
		}
	}
}

func TestLegend_ThresholdsFollowRules(t *testing.T) {
	rules := core.DefaultRules()
	rules.StandardStorageDays = 365
	rows := core.Legend(core.LegendInfo{Organizations: "JKCP"}, rules)
	if rows[2][1] != "JKCP" {
		t.Errorf("organizations row = %q", rows[2][1])
	}
	if got, want := rows[4][1], "（1）物料调取维度：以当前库存在库时长≥365天物料"; got != want {
		t.Errorf("storage threshold row = %q, want %q", got, want)
	}
}
