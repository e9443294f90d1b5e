package backtest

import "fmt"

// SizedDCAParams 定投增强策略参数
type SizedDCAParams struct {
	// PeriodBars 定投间隔（根），20≈一个交易月
	PeriodBars int `yaml:"invest_period_bars" json:"invest_period_bars"`
	// BaseRatio 每期投入占峰值现金的比例 (0,1]
	BaseRatio float64 `yaml:"base_invest_ratio" json:"base_invest_ratio"`
	// ProfitMultiple 每批止盈倍数 (>1)
	ProfitMultiple float64 `yaml:"profit_target_multiple" json:"profit_target_multiple"`
	// RebalanceThreshold 触发再平衡的仓位阈值 (0,1)
	RebalanceThreshold float64 `yaml:"rebalance_threshold" json:"rebalance_threshold"`
	// RebalanceTarget 减持后的目标仓位，必须低于阈值
	RebalanceTarget float64 `yaml:"rebalance_target" json:"rebalance_target"`
}

func (p SizedDCAParams) withDefaults() SizedDCAParams {
	if p.PeriodBars == 0 {
		p.PeriodBars = 20
	}
	if p.BaseRatio == 0 {
		p.BaseRatio = 0.01
	}
	if p.ProfitMultiple == 0 {
		p.ProfitMultiple = 3.0
	}
	if p.RebalanceThreshold == 0 {
		p.RebalanceThreshold = 0.60
	}
	if p.RebalanceTarget == 0 {
		p.RebalanceTarget = 0.40
	}
	return p
}

func (p SizedDCAParams) validate() error {
	if p.PeriodBars <= 0 {
		return fmt.Errorf("invest_period_bars 必须为正: %d", p.PeriodBars)
	}
	if p.BaseRatio <= 0 || p.BaseRatio > 1 {
		return fmt.Errorf("base_invest_ratio 必须在 (0,1]: %v", p.BaseRatio)
	}
	if p.ProfitMultiple <= 1 {
		return fmt.Errorf("profit_target_multiple 必须大于1: %v", p.ProfitMultiple)
	}
	if p.RebalanceThreshold <= 0 || p.RebalanceThreshold >= 1 {
		return fmt.Errorf("rebalance_threshold 必须在 (0,1): %v", p.RebalanceThreshold)
	}
	if p.RebalanceTarget <= 0 || p.RebalanceTarget >= 1 {
		return fmt.Errorf("rebalance_target 必须在 (0,1): %v", p.RebalanceTarget)
	}
	if p.RebalanceTarget >= p.RebalanceThreshold {
		return fmt.Errorf("rebalance_target (%v) 必须低于 rebalance_threshold (%v)",
			p.RebalanceTarget, p.RebalanceThreshold)
	}
	return nil
}

// SizedDCAPlus 批次化定投增强：每根先做止盈扫描，到期按
// 峰值现金×比例×回撤倍率买入并挂3倍止盈，权益新高且仓位超阈值时
// FIFO减持到目标仓位。各步顺序固定，后一步观察前一步的结果。
type SizedDCAPlus struct {
	p       SizedDCAParams
	counter int
}

func NewSizedDCAPlus(p SizedDCAParams) *SizedDCAPlus {
	return &SizedDCAPlus{p: p.withDefaults()}
}

func (s *SizedDCAPlus) Name() string    { return "sized_dca" }
func (s *SizedDCAPlus) Clone() Strategy { return NewSizedDCAPlus(s.p) }

func (s *SizedDCAPlus) Params() SizedDCAParams { return s.p }

func (s *SizedDCAPlus) validate() error { return s.p.validate() }

func (s *SizedDCAPlus) OnBar(i int, ctx *Context) {
	bar := ctx.Bars[i]
	p := ctx.Port

	// 1. 止盈扫描：触价批次按止盈价成交
	p.SweepTakeProfits(bar.Time, bar.High)

	// 2. 周期定投：回撤越深买得越多（0%回撤×1.0，50%回撤×2.0），
	// 现金不足整笔跳过，不做部分买入
	s.counter++
	if s.counter >= s.p.PeriodBars {
		s.counter = 0
		mult := 1.0 + p.Drawdown*2.0
		amount := p.PeakCash * s.p.BaseRatio * mult
		if amount > 0 && p.Cash >= amount {
			p.BuyAmount(bar.Time, bar.Close, amount, bar.Close*s.p.ProfitMultiple,
				fmt.Sprintf("周期定投 (回撤 %.1f%%, 倍率 %.2f)", p.Drawdown*100, mult))
		}
	}

	// 3. 新高再平衡：仓位按买入后的最新状态重算
	if ctx.NewHigh {
		p.Rebalance(bar.Time, bar.Close, s.p.RebalanceThreshold, s.p.RebalanceTarget)
	}
}
