package backtest

import (
	"strings"
	"testing"
)

func TestRenderCandlesSVGBasic(t *testing.T) {
	bars := mkSeries(60, func(i int) float64 { return 10 + float64(i%5) })

	top := make([]float64, len(bars))
	bottom := make([]float64, len(bars))
	for i := range bars {
		top[i] = bars[i].Close * 1.1
		bottom[i] = bars[i].Close * 0.9
	}

	svg, err := RenderCandlesSVG("sh510300", bars,
		[]ChartSeries{
			{Values: top, Label: "上沿", Color: "#3b82f6"},
			{Values: bottom, Label: "下沿", Color: "#3b82f6", Dash: true},
		},
		[]ChartPoint{
			{Date: bars[10].Time.Format("2006-01-02"), Price: bars[10].Low, Label: "B"},
		},
		SVGChartOptions{})
	if err != nil {
		t.Fatal(err)
	}

	out := string(svg)
	if !strings.HasPrefix(out, `<?xml`) || !strings.Contains(out, "</svg>") {
		t.Fatalf("not a complete svg document")
	}
	if !strings.Contains(out, "sh510300") {
		t.Fatalf("title missing")
	}
	if strings.Count(out, "<polyline") != 2 {
		t.Fatalf("series polylines = %d, want 2", strings.Count(out, "<polyline"))
	}
	if !strings.Contains(out, "<circle") {
		t.Fatalf("marker point missing")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Fatalf("dashed series missing")
	}
}

func TestRenderCandlesSVGRejectsShortSeries(t *testing.T) {
	bars := mkSeries(1, func(int) float64 { return 10 })
	if _, err := RenderCandlesSVG("x", bars, nil, nil, SVGChartOptions{}); err == nil {
		t.Fatalf("single bar accepted")
	}
}

func TestRenderCandlesSVGSkipsMismatchedSeries(t *testing.T) {
	bars := mkSeries(30, func(int) float64 { return 10 })
	svg, err := RenderCandlesSVG("x", bars,
		[]ChartSeries{{Values: []float64{1, 2, 3}}}, nil, SVGChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(svg), "<polyline") {
		t.Fatalf("mismatched series rendered")
	}
}

func TestRenderEquitySVG(t *testing.T) {
	curves := map[string][]EquityPoint{
		"buy_hold":  {{Equity: 100}, {Equity: 110}, {Equity: 120}},
		"sized_dca": {{Equity: 100}, {Equity: 105}, {Equity: 118}},
	}
	svg, err := RenderEquitySVG("对比", curves, SVGChartOptions{})
	if err != nil {
		t.Fatal(err)
	}
	out := string(svg)
	if strings.Count(out, "<polyline") != 2 {
		t.Fatalf("curves = %d, want 2", strings.Count(out, "<polyline"))
	}
	if !strings.Contains(out, "buy_hold") || !strings.Contains(out, "sized_dca") {
		t.Fatalf("legend missing")
	}
}
