package backtest

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompareStrategiesRunsAll(t *testing.T) {
	bars := mkSeries(300, func(i int) float64 { return 10 + float64(i)*0.05 })
	cfg := DefaultRunConfig()
	cfg.InitialCash = 100_000

	results, err := CompareStrategies("sh510300", bars, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(StrategyTypes()) {
		t.Fatalf("results = %d, want %d", len(results), len(StrategyTypes()))
	}
	// 输出顺序与策略列表一致，互不串扰
	for i, typ := range StrategyTypes() {
		if results[i].Strategy != typ {
			t.Fatalf("result %d strategy = %s, want %s", i, results[i].Strategy, typ)
		}
		if results[i].InitialCash != 100_000 {
			t.Fatalf("result %d initial cash = %v", i, results[i].InitialCash)
		}
	}
}

func TestCompareStrategiesUptrendOrdering(t *testing.T) {
	bars := mkSeries(300, func(i int) float64 { return 10 + float64(i)*0.1 })
	cfg := DefaultRunConfig()
	cfg.InitialCash = 100_000

	results, err := CompareStrategies("test", bars, cfg, []string{"buy_hold", "dca"})
	if err != nil {
		t.Fatal(err)
	}
	// 单边上涨中首根全仓应跑赢小额定投
	if results[0].FinalEquity <= results[1].FinalEquity {
		t.Fatalf("buy_hold %v should beat dca %v in pure uptrend",
			results[0].FinalEquity, results[1].FinalEquity)
	}
}

func TestWriteComparisonTable(t *testing.T) {
	results := []Result{
		{Strategy: "dca", InitialCash: 100_000, Injected: 12_000, FinalEquity: 130_000, TotalReturnPct: 30},
		{Strategy: "buy_hold", InitialCash: 100_000, FinalEquity: 150_000, TotalReturnPct: 50},
	}

	var buf bytes.Buffer
	WriteComparisonTable(&buf, "sh510300", results)
	out := buf.String()

	if !strings.Contains(out, "sh510300") {
		t.Fatalf("symbol missing:\n%s", out)
	}
	// 按最终权益降序
	if strings.Index(out, "buy_hold") > strings.Index(out, "dca") {
		t.Fatalf("not sorted by final equity:\n%s", out)
	}
	if !strings.Contains(out, "150000.00") || !strings.Contains(out, "112000.00") {
		t.Fatalf("decimal columns wrong:\n%s", out)
	}
}

func TestWriteResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultsJSON(&buf, []Result{{Symbol: "sh510300", Strategy: "buy_hold"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"symbol": "sh510300"`) {
		t.Fatalf("json output:\n%s", buf.String())
	}
}
