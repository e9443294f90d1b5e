package backtest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backtest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRunConfigFull(t *testing.T) {
	path := writeTempConfig(t, `
backtest:
  symbols: ["sh510300", "sz159915"]
  days: 2000
  start: "2020-01-01"
  end: "2024-12-31"
  initial_cash: 200000
  monthly_contribution: 3000
  trading_start: "2020-06-01"
indicators:
  ladder_short_span: 20
  ladder_long_span: 60
strategy:
  type: sized_dca
  params:
    invest_period_bars: 10
    base_invest_ratio: 0.02
`)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "sh510300" {
		t.Fatalf("symbols = %v", cfg.Symbols)
	}
	if cfg.InitialCash != 200_000 || cfg.MonthlyContribution != 3_000 {
		t.Fatalf("cash fields: %v / %v", cfg.InitialCash, cfg.MonthlyContribution)
	}
	if cfg.LadderShort != 20 || cfg.LadderLong != 60 {
		t.Fatalf("ladder spans: %d / %d", cfg.LadderShort, cfg.LadderLong)
	}
	if cfg.TradingStart.Year() != 2020 || cfg.TradingStart.Month() != 6 {
		t.Fatalf("trading start = %v", cfg.TradingStart)
	}

	strat, ok := cfg.Strategy.(*SizedDCAPlus)
	if !ok {
		t.Fatalf("strategy type = %T", cfg.Strategy)
	}
	p := strat.Params()
	if p.PeriodBars != 10 || p.BaseRatio != 0.02 {
		t.Fatalf("overridden params: %+v", p)
	}
	// 未覆盖的参数落默认值
	if p.ProfitMultiple != 3.0 || p.RebalanceThreshold != 0.60 {
		t.Fatalf("default params: %+v", p)
	}
}

func TestLoadRunConfigDefaultsToSizedDCA(t *testing.T) {
	path := writeTempConfig(t, `
backtest:
  symbols: ["sh510300"]
`)
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy.Name() != "sized_dca" {
		t.Fatalf("default strategy = %s", cfg.Strategy.Name())
	}
}

func TestLoadRunConfigUnknownStrategy(t *testing.T) {
	path := writeTempConfig(t, `
backtest:
  symbols: ["sh510300"]
strategy:
  type: moon_phase
`)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatalf("unknown strategy accepted")
	}
}

func TestLoadRunConfigBadParams(t *testing.T) {
	path := writeTempConfig(t, `
backtest:
  symbols: ["sh510300"]
strategy:
  type: sized_dca
  params:
    rebalance_threshold: 0.3
    rebalance_target: 0.5
`)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatalf("target above threshold accepted")
	}
}

func TestLoadRunConfigBadDate(t *testing.T) {
	path := writeTempConfig(t, `
backtest:
  symbols: ["sh510300"]
  start: "01/02/2020"
`)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatalf("bad date accepted")
	}
}

func TestBuildStrategyAllTypes(t *testing.T) {
	for _, typ := range StrategyTypes() {
		s, err := BuildStrategy(typ, nil)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if s.Name() != typ {
			t.Fatalf("name %s != type %s", s.Name(), typ)
		}
		clone := s.Clone()
		if clone == nil || clone.Name() != typ {
			t.Fatalf("%s clone broken", typ)
		}
	}
}
