package scanner

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTable(t *testing.T) {
	reports := []SignalReport{
		{Symbol: "sh510300", Name: "沪深300ETF", LastDate: "2024-06-03", LastClose: 3.52, Trend: 1, Bottom: true},
		{Symbol: "sz159915", Errors: []string{"K线不足: 10"}},
	}

	var buf bytes.Buffer
	WriteTable(&buf, reports)
	out := buf.String()

	if !strings.Contains(out, "sh510300") || !strings.Contains(out, "★") {
		t.Fatalf("signal row missing:\n%s", out)
	}
	if !strings.Contains(out, "错误: K线不足: 10") {
		t.Fatalf("error row missing:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, []SignalReport{{Symbol: "sh510300", Bottom: true}})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"symbol": "sh510300"`) || !strings.Contains(out, `"bottom": true`) {
		t.Fatalf("json output:\n%s", out)
	}
}

func TestSanitizeChartFilename(t *testing.T) {
	cases := map[string]string{
		"sh510300":  "sh510300",
		"a/b c":     "a_b_c",
		"":          "unknown",
		"沪深300":  "__300",
	}
	for in, want := range cases {
		if got := sanitizeChartFilename(in); got != want {
			t.Fatalf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
