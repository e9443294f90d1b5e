package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"quantlab/fetcher"
	"quantlab/indicator"
	"quantlab/model"
)

type Result struct {
	Symbol         string        `json:"symbol"`
	Strategy       string        `json:"strategy"`
	InitialCash    float64       `json:"initial_cash"`
	Injected       float64       `json:"injected"`
	FinalEquity    float64       `json:"final_equity"`
	TotalReturnPct float64       `json:"total_return_pct"`
	CAGRPct        float64       `json:"cagr_pct"`
	MaxDDPct       float64       `json:"max_drawdown_pct"`
	TotalTrades    int           `json:"total_trades"`
	Trades         []TradeRecord `json:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
	Errors         []string      `json:"errors,omitempty"`
}

type Runner struct {
	klineFetcher *fetcher.KLineFetcher
}

func NewRunner() *Runner {
	return &Runner{klineFetcher: fetcher.NewKLineFetcher()}
}

func (r *Runner) Run(cfg RunConfig) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}

	var out []Result
	for _, sym := range cfg.Symbols {
		bars, err := r.LoadBars(sym, cfg)
		if err != nil {
			out = append(out, Result{
				Symbol:   sym,
				Strategy: cfg.Strategy.Name(),
				Errors:   []string{err.Error()},
			})
			continue
		}
		res, err := RunSeries(sym, bars, cfg)
		if err != nil {
			out = append(out, Result{
				Symbol:   sym,
				Strategy: cfg.Strategy.Name(),
				Errors:   []string{err.Error()},
			})
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

// LoadBars 拉取日K并按配置窗口裁剪
func (r *Runner) LoadBars(symbol string, cfg RunConfig) ([]model.PriceBar, error) {
	all, err := r.klineFetcher.FetchDaily(symbol, cfg.Days)
	if err != nil {
		return nil, err
	}

	bars := make([]model.PriceBar, 0, len(all))
	for _, b := range all {
		if !cfg.Start.IsZero() && b.Time.Before(cfg.Start) {
			continue
		}
		if !cfg.End.IsZero() && b.Time.After(cfg.End) {
			continue
		}
		bars = append(bars, b)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) < 50 {
		return nil, fmt.Errorf("not enough bars: %d", len(bars))
	}
	return bars, nil
}

// RunSeries 对一条已就绪的K线序列执行一次完整回测。
// 序列必须时间严格递增且OHLC齐全，否则整个回测失败。
// 每根固定顺序：缓冲期判定 → 月度资金注入 → 盯市 → 策略决策 → 记录权益点。
func RunSeries(symbol string, bars []model.PriceBar, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty bar series")
	}
	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", symbol, err)
	}

	frame := indicator.NewFrame(bars, indicator.Spans{
		LadderShort: cfg.LadderShort,
		LadderLong:  cfg.LadderLong,
	})

	strategy := cfg.Strategy.Clone()
	port := NewPortfolio(cfg.InitialCash)
	ctx := &Context{Bars: bars, Frame: frame, Port: port}

	maxDD := 0.0
	curve := make([]EquityPoint, 0, len(bars))

	for i, bar := range bars {
		// 缓冲期：未到起始日，权益按初始现金平直记录，无交易无注入
		if !cfg.TradingStart.IsZero() && bar.Time.Before(cfg.TradingStart) {
			curve = append(curve, EquityPoint{
				Time:   bar.Time.Format("2006-01-02"),
				Equity: round2(cfg.InitialCash),
				Cash:   round2(cfg.InitialCash),
			})
			continue
		}

		port.InjectMonthly(bar.Time, cfg.MonthlyContribution)
		ctx.NewHigh = port.MarkToMarket(bar.Close)

		strategy.OnBar(i, ctx)

		stockValue := port.Shares * bar.Close
		equity := port.Cash + stockValue
		allocation := 0.0
		if equity > 0 {
			allocation = stockValue / equity
		}
		if port.Drawdown > maxDD {
			maxDD = port.Drawdown
		}
		curve = append(curve, EquityPoint{
			Time:          bar.Time.Format("2006-01-02"),
			Equity:        round2(equity),
			Cash:          round2(port.Cash),
			StockValue:    round2(stockValue),
			DrawdownPct:   round2(port.Drawdown * 100),
			AllocationPct: round2(allocation * 100),
		})
	}

	finalEquity := cfg.InitialCash
	if len(curve) > 0 {
		finalEquity = curve[len(curve)-1].Equity
	}
	totalReturn := 0.0
	if cfg.InitialCash > 0 {
		totalReturn = (finalEquity - cfg.InitialCash) / cfg.InitialCash * 100
	}

	return &Result{
		Symbol:         symbol,
		Strategy:       strategy.Name(),
		InitialCash:    round2(cfg.InitialCash),
		Injected:       round2(port.Injected),
		FinalEquity:    round2(finalEquity),
		TotalReturnPct: round2(totalReturn),
		CAGRPct:        round2(cagrPct(cfg.InitialCash, finalEquity, bars)),
		MaxDDPct:       round2(maxDD * 100),
		TotalTrades:    len(port.Trades),
		Trades:         port.Trades,
		EquityCurve:    curve,
	}, nil
}

func cagrPct(initial, final float64, bars []model.PriceBar) float64 {
	if initial <= 0 || final <= 0 || len(bars) < 2 {
		return 0
	}
	days := bars[len(bars)-1].Time.Sub(bars[0].Time).Hours() / 24
	if days <= 0 {
		return 0
	}
	return (math.Pow(final/initial, 365.0/days) - 1) * 100
}

func WriteResultsJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
