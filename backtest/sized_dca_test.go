package backtest

import (
	"math"
	"strings"
	"testing"
)

func sizedParams(period int) SizedDCAParams {
	return SizedDCAParams{PeriodBars: period}.withDefaults()
}

func TestSizedDCAFlatMarketBuySize(t *testing.T) {
	bars := flatSeries(10)
	strat := NewSizedDCAPlus(sizedParams(1))
	port := NewPortfolio(100_000)
	ctx := &Context{Bars: bars, Port: port}

	port.MarkToMarket(bars[0].Close)
	strat.OnBar(0, ctx)

	// 无回撤时倍率为1：100000×0.01/10 = 100股
	if !almostEq(port.Shares, 100, 1e-9) {
		t.Fatalf("shares = %v, want 100", port.Shares)
	}
	lot := port.Lots[0]
	if !almostEq(lot.TakeProfit, 30, 1e-9) {
		t.Fatalf("take profit = %v, want 3x close = 30", lot.TakeProfit)
	}
}

func TestSizedDCADrawdownScalesBuy(t *testing.T) {
	bars := flatSeries(10)
	strat := NewSizedDCAPlus(sizedParams(1))
	port := NewPortfolio(100_000)
	port.MaxEquity = 200_000 // 制造50%回撤
	ctx := &Context{Bars: bars, Port: port}

	port.MarkToMarket(bars[0].Close)
	if !almostEq(port.Drawdown, 0.5, 1e-9) {
		t.Fatalf("drawdown = %v, want 0.5", port.Drawdown)
	}

	strat.OnBar(0, ctx)

	// 50%回撤 → 倍率2.0 → 买入2000元=200股
	if !almostEq(port.Shares, 200, 1e-9) {
		t.Fatalf("shares = %v, want 200", port.Shares)
	}
}

func TestSizedDCASkipsWhenCashShort(t *testing.T) {
	bars := flatSeries(10)
	strat := NewSizedDCAPlus(sizedParams(1))
	port := NewPortfolio(100_000)
	port.MarkToMarket(bars[0].Close)
	port.Cash = 500 // 峰值现金仍是100000，应买1000元但现金不足

	ctx := &Context{Bars: bars, Port: port}
	strat.OnBar(0, ctx)

	// 整笔跳过，不做部分买入
	if port.Shares != 0 || port.Cash != 500 {
		t.Fatalf("partial buy happened: shares=%v cash=%v", port.Shares, port.Cash)
	}
}

func TestSizedDCAPeriodCounter(t *testing.T) {
	bars := flatSeries(10)
	strat := NewSizedDCAPlus(sizedParams(3))
	port := NewPortfolio(100_000)
	port.MarkToMarket(bars[0].Close)
	ctx := &Context{Bars: bars, Port: port}

	buys := 0
	for i := 0; i < 9; i++ {
		before := len(port.Trades)
		strat.OnBar(i, ctx)
		if len(port.Trades) > before {
			buys++
		}
	}
	if buys != 3 {
		t.Fatalf("buys in 9 bars with period 3 = %d, want 3", buys)
	}
}

func TestSizedDCATakeProfitBeforeBuy(t *testing.T) {
	// 同一根K线先止盈回笼现金，再执行定投
	bars := mkSeries(2, func(i int) float64 { return 10 })
	bars[1].High = 31
	strat := NewSizedDCAPlus(sizedParams(1))
	port := NewPortfolio(1_000)
	port.BuyAmountUnchecked(bars[0].Time, 10, 10, 30)
	ctx := &Context{Bars: bars, Port: port}

	port.MarkToMarket(bars[1].Close)
	strat.OnBar(1, ctx)

	var actions []string
	for _, tr := range port.Trades {
		actions = append(actions, string(tr.Action))
	}
	joined := strings.Join(actions, ",")
	if !strings.HasPrefix(joined, "SELL_TP") {
		t.Fatalf("take profit did not run first: %s", joined)
	}
	if !strings.Contains(joined, "BUY") {
		t.Fatalf("periodic buy missing after tp: %s", joined)
	}
}

func TestSizedDCARebalanceOnlyOnNewHigh(t *testing.T) {
	bars := flatSeries(3)
	strat := NewSizedDCAPlus(sizedParams(100)) // 周期拉长，隔离再平衡路径
	port := NewPortfolio(2_000)
	port.BuyAmountUnchecked(bars[0].Time, 10, 800, 0) // 仓位80%

	ctx := &Context{Bars: bars, Port: port, NewHigh: false}
	strat.OnBar(0, ctx)
	if hasAction(port.Trades, ActionSellRebalance) {
		t.Fatalf("rebalance fired without new high")
	}

	ctx.NewHigh = true
	strat.OnBar(1, ctx)
	if !hasAction(port.Trades, ActionSellRebalance) {
		t.Fatalf("rebalance missing on new high above threshold")
	}
	alloc := port.Shares * 10 / (port.Cash + port.Shares*10)
	if math.Abs(alloc-0.4) > 1e-9 {
		t.Fatalf("allocation = %v, want 0.40", alloc)
	}
}

func hasAction(trades []TradeRecord, action TradeAction) bool {
	for _, tr := range trades {
		if tr.Action == action {
			return true
		}
	}
	return false
}

func TestSizedDCAParamsValidate(t *testing.T) {
	bad := []SizedDCAParams{
		{PeriodBars: 0, BaseRatio: 0.01, ProfitMultiple: 3, RebalanceThreshold: 0.6, RebalanceTarget: 0.4},
		{PeriodBars: 20, BaseRatio: 1.5, ProfitMultiple: 3, RebalanceThreshold: 0.6, RebalanceTarget: 0.4},
		{PeriodBars: 20, BaseRatio: 0.01, ProfitMultiple: 1, RebalanceThreshold: 0.6, RebalanceTarget: 0.4},
		{PeriodBars: 20, BaseRatio: 0.01, ProfitMultiple: 3, RebalanceThreshold: 0.4, RebalanceTarget: 0.6},
	}
	for i, p := range bad {
		if err := p.validate(); err == nil {
			t.Fatalf("case %d accepted: %+v", i, p)
		}
	}

	good := SizedDCAParams{}.withDefaults()
	if err := good.validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}
