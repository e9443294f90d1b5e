package backtest

import (
	"quantlab/indicator"
	"quantlab/model"
	"quantlab/trading"
)

// Context 传给策略的逐根上下文。Bars与Frame只读，Port由当前回测独占。
type Context struct {
	Bars  []model.PriceBar
	Frame *indicator.Frame
	Port  *Portfolio
	// NewHigh 本根盯市是否创出权益新高
	NewHigh bool
}

// Strategy 单根决策单元：给定K线下标、指标与持仓状态，施加零或多个
// 组合动作。Clone返回全新内部状态的副本，供并行对比使用。
type Strategy interface {
	Name() string
	OnBar(i int, ctx *Context)
	Clone() Strategy
}

// ---- 买入持有 ----

type BuyAndHold struct {
	bought bool
}

func NewBuyAndHold() *BuyAndHold { return &BuyAndHold{} }

func (s *BuyAndHold) Name() string    { return "buy_hold" }
func (s *BuyAndHold) Clone() Strategy { return NewBuyAndHold() }

func (s *BuyAndHold) OnBar(i int, ctx *Context) {
	if s.bought {
		return
	}
	p := ctx.Port
	if p.Cash <= 0 {
		return
	}
	p.BuyAmount(ctx.Bars[i].Time, ctx.Bars[i].Close, p.Cash, 0, "首根全仓买入")
	s.bought = true
}

// ---- 定期定投 ----

type PeriodicDCA struct {
	Amount    float64
	lastMonth string
}

func NewPeriodicDCA(amount float64) *PeriodicDCA {
	if amount <= 0 {
		amount = 1000
	}
	return &PeriodicDCA{Amount: amount}
}

func (s *PeriodicDCA) Name() string    { return "dca" }
func (s *PeriodicDCA) Clone() Strategy { return NewPeriodicDCA(s.Amount) }

// 每个新自然月的第一根K线买入固定金额，不足则买入剩余现金。
func (s *PeriodicDCA) OnBar(i int, ctx *Context) {
	bar := ctx.Bars[i]
	key := trading.MonthKey(bar.Time)
	if key == s.lastMonth {
		return
	}
	s.lastMonth = key

	p := ctx.Port
	amount := s.Amount
	if amount > p.Cash {
		amount = p.Cash
	}
	if amount <= 0 {
		return
	}
	p.BuyAmount(bar.Time, bar.Close, amount, 0, "月度定投")
}

// ---- 长均线趋势 ----

type MATrend struct {
	Window int
	ma     []float64
}

func NewMATrend(window int) *MATrend {
	if window <= 0 {
		window = 200
	}
	return &MATrend{Window: window}
}

func (s *MATrend) Name() string    { return "ma_trend" }
func (s *MATrend) Clone() Strategy { return NewMATrend(s.Window) }

func (s *MATrend) OnBar(i int, ctx *Context) {
	if s.ma == nil {
		s.ma = indicator.SMA(model.Closes(ctx.Bars), s.Window)
	}
	if !indicator.SMAValid(i, s.Window) {
		return // 均线未形成，不动作
	}
	bar := ctx.Bars[i]
	p := ctx.Port
	switch {
	case bar.Close > s.ma[i] && p.Cash > 0:
		p.BuyAmount(bar.Time, bar.Close, p.Cash, 0, "收盘上穿均线")
	case bar.Close < s.ma[i] && p.Shares > 0:
		p.SellAll(bar.Time, bar.Close, "收盘下穿均线")
	}
}

// ---- 蓝梯子突破 ----

type LadderBreakout struct{}

func NewLadderBreakout() *LadderBreakout { return &LadderBreakout{} }

func (s *LadderBreakout) Name() string    { return "ladder" }
func (s *LadderBreakout) Clone() Strategy { return &LadderBreakout{} }

func (s *LadderBreakout) OnBar(i int, ctx *Context) {
	bar := ctx.Bars[i]
	p := ctx.Port
	ld := ctx.Frame.Ladder
	switch {
	case bar.Close > ld.BlueTop[i] && p.Cash > 0:
		p.BuyAmount(bar.Time, bar.Close, p.Cash, 0, "突破蓝色梯子上沿")
	case bar.Close < ld.BlueBottom[i] && p.Shares > 0:
		p.SellAll(bar.Time, bar.Close, "跌破蓝色梯子下沿")
	}
}

// ---- 抄底+梯子状态机 ----

type bottomLadderState int

const (
	stateNeutral bottomLadderState = iota
	stateBottomSeen
	stateInvested
)

// BottomLadder 先等抄底信号出现，再等收盘突破黄色梯子上沿才买入，
// 跌破蓝色梯子下沿清仓并回到等待新抄底信号的状态。
type BottomLadder struct {
	state bottomLadderState
}

func NewBottomLadder() *BottomLadder { return &BottomLadder{} }

func (s *BottomLadder) Name() string    { return "bottom_ladder" }
func (s *BottomLadder) Clone() Strategy { return &BottomLadder{} }

func (s *BottomLadder) OnBar(i int, ctx *Context) {
	bar := ctx.Bars[i]
	p := ctx.Port
	fr := ctx.Frame
	isBottom := fr.Bottom[i] == 1

	switch s.state {
	case stateNeutral:
		if isBottom {
			s.state = stateBottomSeen
			p.Signal(bar.Time, bar.Close, "发现抄底信号")
		}
	case stateBottomSeen:
		if isBottom {
			p.Signal(bar.Time, bar.Close, "抄底信号再现")
		}
		if bar.Close > fr.Ladder.YellowTop[i] && p.Cash > 0 {
			p.BuyAmount(bar.Time, bar.Close, p.Cash, 0, "突破黄色梯子上沿")
			s.state = stateInvested
		}
	case stateInvested:
		if bar.Close < fr.Ladder.BlueBottom[i] && p.Shares > 0 {
			p.SellAll(bar.Time, bar.Close, "跌破蓝色梯子下沿")
			s.state = stateNeutral
		}
	}
}
