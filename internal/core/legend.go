package core

import (
	"fmt"
	"time"
)

// LegendInfo is the context printed on the report's description sheet.
type LegendInfo struct {
	ExtractedAt   time.Time
	Organizations string
	Source        string
}

// Legend returns the two-column description table that accompanies the
// report. Thresholds are taken from rules so the text matches the run.
func Legend(info LegendInfo, rules Rules) [][]string {
	return [][]string{
		{"库存物料说明", ""},
		{"1.库存调取时间", extractionStamp(info.ExtractedAt)},
		{"2.库存组织", info.Organizations},
		{"3.库存数据来源", info.Source},
		{"4.呆滞品", fmt.Sprintf("（1）物料调取维度：以当前库存在库时长≥%d天物料", rules.StandardStorageDays)},
		{"4.呆滞品", fmt.Sprintf("（2）物料调取其他条件：以最后一次事物处理时间为基础，筛选出%d天内无领用物料", rules.RecencyDays)},
		{"4.呆滞品", fmt.Sprintf("（3）外协单元存货调取维度：以当前库存在库时长≥%d天物料", rules.OutsourcedStorageDays)},
		{"5.预警货", "以当前库存物料在库失效日期为准，剩余三分之二效期物料"},
		{"6.临期货", "以当前库存物料在库失效日期为准，剩余三分之一效期物料"},
		{"7.过期货", "以当前库存物料在库失效日期为准，超过失效日期物料"},
		{"8.数据异常", "生产日期不早于失效日期，无法计算效期占比的物料"},
	}
}

// DefaultExtractionTime is 08:30 on the first day of now's month, when the
// month-end extract is normally pulled.
func DefaultExtractionTime(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 8, 30, 0, 0, now.Location())
}

// extractionStamp renders t on a 12-hour clock with a 上午/下午 marker.
func extractionStamp(t time.Time) string {
	marker := "上午"
	if t.Hour() >= 12 {
		marker = "下午"
	}
	return t.Format("2006年01月02日 " + marker + "03点04分")
}
