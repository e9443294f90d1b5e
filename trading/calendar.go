package trading

import "time"

// 中国时区
var cst = time.FixedZone("CST", 8*3600)

// MonthKey 返回自然月键（按年月，不是滚动30天窗口）
func MonthKey(t time.Time) string {
	return t.In(cst).Format("2006-01")
}

// SameMonth 判断两个时间是否落在同一个自然月
func SameMonth(a, b time.Time) bool {
	return MonthKey(a) == MonthKey(b)
}

// IsTradingDay 判断是否为交易日（周一到周五，不含节假日表）
func IsTradingDay(t time.Time) bool {
	wd := t.In(cst).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextTradingDay 返回下一个交易日（同一时刻）
func NextTradingDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for !IsTradingDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
