package backtest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"quantlab/indicator"
)

type YAMLConfig struct {
	Backtest struct {
		Symbols             []string `yaml:"symbols"`
		Days                int      `yaml:"days"`
		Start               string   `yaml:"start"`
		End                 string   `yaml:"end"`
		InitialCash         float64  `yaml:"initial_cash"`
		MonthlyContribution float64  `yaml:"monthly_contribution"`
		TradingStart        string   `yaml:"trading_start"`
	} `yaml:"backtest"`

	Indicators struct {
		LadderShortSpan int `yaml:"ladder_short_span"`
		LadderLongSpan  int `yaml:"ladder_long_span"`
	} `yaml:"indicators"`

	Strategy struct {
		Type   string         `yaml:"type"`
		Params map[string]any `yaml:"params"`
	} `yaml:"strategy"`
}

type RunConfig struct {
	Symbols             []string
	Days                int
	Start               time.Time
	End                 time.Time
	InitialCash         float64
	MonthlyContribution float64
	TradingStart        time.Time

	LadderShort int
	LadderLong  int

	Strategy Strategy

	// Scan-only options (not loaded from YAML)
	ScanChart     bool
	ScanChartDir  string
	ScanChartBars int
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Days:        5000,
		InitialCash: 1_000_000,
		LadderShort: indicator.DefaultShortSpan,
		LadderLong:  indicator.DefaultLongSpan,
		Strategy:    NewSizedDCAPlus(SizedDCAParams{}.withDefaults()),
	}
}

// Validate 验证运行配置，参数越界直接报错而不是悄悄修正
func (cfg RunConfig) Validate() error {
	if cfg.InitialCash <= 0 {
		return fmt.Errorf("initial_cash 必须为正: %.2f", cfg.InitialCash)
	}
	if cfg.MonthlyContribution < 0 {
		return fmt.Errorf("monthly_contribution 不能为负: %.2f", cfg.MonthlyContribution)
	}
	if cfg.LadderShort <= 0 || cfg.LadderLong <= 0 {
		return fmt.Errorf("通道均线周期必须为正: %d/%d", cfg.LadderShort, cfg.LadderLong)
	}
	if !cfg.Start.IsZero() && !cfg.End.IsZero() && cfg.End.Before(cfg.Start) {
		return fmt.Errorf("end 不能早于 start")
	}
	if cfg.Strategy == nil {
		return fmt.Errorf("未配置策略")
	}
	if v, ok := cfg.Strategy.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return err
		}
	}
	return nil
}

func LoadRunConfig(path string) (RunConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}

	var yc YAMLConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return RunConfig{}, fmt.Errorf("parse yaml: %w", err)
	}

	cfg := DefaultRunConfig()

	cfg.Symbols = append(cfg.Symbols, yc.Backtest.Symbols...)
	if yc.Backtest.Days > 0 {
		cfg.Days = yc.Backtest.Days
	}
	if yc.Backtest.InitialCash > 0 {
		cfg.InitialCash = yc.Backtest.InitialCash
	}
	if yc.Backtest.MonthlyContribution != 0 {
		cfg.MonthlyContribution = yc.Backtest.MonthlyContribution
	}
	if yc.Indicators.LadderShortSpan > 0 {
		cfg.LadderShort = yc.Indicators.LadderShortSpan
	}
	if yc.Indicators.LadderLongSpan > 0 {
		cfg.LadderLong = yc.Indicators.LadderLongSpan
	}

	if yc.Backtest.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.Start, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.start: %w", err)
		}
		cfg.Start = t
	}
	if yc.Backtest.End != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.End, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.end: %w", err)
		}
		cfg.End = t
	}
	if yc.Backtest.TradingStart != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.TradingStart, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.trading_start: %w", err)
		}
		cfg.TradingStart = t
	}

	strat, err := BuildStrategy(yc.Strategy.Type, yc.Strategy.Params)
	if err != nil {
		return RunConfig{}, err
	}
	cfg.Strategy = strat

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// BuildStrategy 按类型名构造策略，params 通过 yaml 二次编解码注入
func BuildStrategy(typ string, params map[string]any) (Strategy, error) {
	decode := func(dst any) {
		if params != nil {
			b, _ := yaml.Marshal(params)
			_ = yaml.Unmarshal(b, dst)
		}
	}

	switch typ {
	case "", "sized_dca":
		var p SizedDCAParams
		decode(&p)
		p = p.withDefaults()
		if err := p.validate(); err != nil {
			return nil, err
		}
		return NewSizedDCAPlus(p), nil
	case "buy_hold":
		return &BuyAndHold{}, nil
	case "dca":
		var p struct {
			Amount float64 `yaml:"amount"`
		}
		decode(&p)
		if p.Amount <= 0 {
			p.Amount = 10_000
		}
		return &PeriodicDCA{Amount: p.Amount}, nil
	case "ma_trend":
		var p struct {
			Window int `yaml:"window"`
		}
		decode(&p)
		if p.Window <= 0 {
			p.Window = 20
		}
		return &MATrend{Window: p.Window}, nil
	case "ladder":
		return &LadderBreakout{}, nil
	case "bottom_ladder":
		return &BottomLadder{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy.type: %s", typ)
	}
}

// StrategyTypes 返回所有可用的策略类型名
func StrategyTypes() []string {
	return []string{"sized_dca", "buy_hold", "dca", "ma_trend", "ladder", "bottom_ladder"}
}
