package scanner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteJSON 输出扫描结果JSON
func WriteJSON(w io.Writer, reports []SignalReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// WriteTable 输出人读的扫描结果表
func WriteTable(w io.Writer, reports []SignalReport) {
	fmt.Fprintf(w, "%-12s %-12s %-12s %10s %6s %6s %6s %s\n",
		"代码", "名称", "日期", "收盘", "趋势", "抄底", "宽松", "图表")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, r := range reports {
		if len(r.Errors) > 0 {
			fmt.Fprintf(w, "%-12s 错误: %s\n", r.Symbol, strings.Join(r.Errors, "; "))
			continue
		}
		fmt.Fprintf(w, "%-12s %-12s %-12s %10.2f %6s %6s %6s %s\n",
			r.Symbol, r.Name, r.LastDate, r.LastClose,
			trendLabel(r.Trend), boolMark(r.Bottom), boolMark(r.RelaxedBottom), r.ChartPath)
	}
}

func trendLabel(trend int) string {
	switch {
	case trend > 0:
		return "多"
	case trend < 0:
		return "空"
	default:
		return "震荡"
	}
}

func boolMark(b bool) string {
	if b {
		return "★"
	}
	return "-"
}
