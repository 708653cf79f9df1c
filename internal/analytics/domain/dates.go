package domain

import (
	"fmt"
	"time"
)

// daysPerYear Actual/365 日计数基准
const daysPerYear = 365.0

// dateLayouts 支持的日期格式，按优先级排列
// 主格式为 MM/DD/YYYY，其余为确定性兜底
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
}

// ParseDate 解析日期字符串
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// YearFraction 计算两个日期之间的年化时间，Actual/365 约定
func YearFraction(start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	return days / daysPerYear
}

// AddMonths 在日期上增加指定月数
// 月份/年份进位后，日号截断到目标月份的最后一个有效日
func AddMonths(t time.Time, months int) time.Time {
	month := int(t.Month()) - 1 + months
	year := t.Year() + month/12
	month = month%12 + 1

	day := t.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
