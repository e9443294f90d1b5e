package backtest

import (
	"fmt"
	"time"

	"quantlab/trading"
)

// Portfolio 单次回测私有的资金/持仓聚合。批次列表按买入顺序排列
// （最早在前），任何减仓都从队首开始消耗（FIFO）。不跨回测共享。
type Portfolio struct {
	Cash   float64
	Shares float64
	Lots   []Lot

	// PeakCash 历史最高闲置现金，只增不减，作为定投规模基数
	PeakCash float64
	// MaxEquity 历史最高权益，只增不减
	MaxEquity float64
	// Drawdown 当前距历史最高权益的回撤比例 [0,1)
	Drawdown float64

	// Injected 累计注入的月度资金
	Injected float64

	Trades []TradeRecord

	lastInjection string
}

func NewPortfolio(initialCash float64) *Portfolio {
	return &Portfolio{
		Cash:      initialCash,
		PeakCash:  initialCash,
		MaxEquity: initialCash,
	}
}

// Equity 以给定收盘价计的总权益
func (p *Portfolio) Equity(close float64) float64 {
	return p.Cash + p.Shares*close
}

// MarkToMarket 按收盘价刷新峰值现金、最高权益与回撤，
// 返回本根是否创出权益新高。
func (p *Portfolio) MarkToMarket(close float64) (newHigh bool) {
	if p.Cash > p.PeakCash {
		p.PeakCash = p.Cash
	}
	equity := p.Equity(close)
	if equity > p.MaxEquity {
		p.MaxEquity = equity
		p.Drawdown = 0
		return true
	}
	if p.MaxEquity > 0 {
		p.Drawdown = (p.MaxEquity - equity) / p.MaxEquity
	} else {
		p.Drawdown = 0
	}
	return false
}

// InjectMonthly 按自然月注入一次现金（年月键控，非滚动30天）
func (p *Portfolio) InjectMonthly(t time.Time, amount float64) {
	if amount <= 0 {
		return
	}
	key := trading.MonthKey(t)
	if key == p.lastInjection {
		return
	}
	p.lastInjection = key
	p.Cash += amount
	p.Injected += amount
}

// BuyAmount 按金额买入并建立新批次。takeProfit为0表示不挂止盈。
func (p *Portfolio) BuyAmount(t time.Time, price, amount, takeProfit float64, reason string) {
	if amount <= 0 || price <= 0 || amount > p.Cash {
		return
	}
	shares := amount / price
	p.Cash -= amount
	p.Shares += shares
	p.Lots = append(p.Lots, Lot{EntryPrice: price, Shares: shares, TakeProfit: takeProfit})
	p.record(t, ActionBuy, price, shares, -amount, reason)
}

// SellAll 按给定价格清仓，消耗全部批次
func (p *Portfolio) SellAll(t time.Time, price float64, reason string) {
	if p.Shares <= 0 || price <= 0 {
		return
	}
	proceeds := p.Shares * price
	p.record(t, ActionSell, price, p.Shares, proceeds, reason)
	p.Cash += proceeds
	p.Shares = 0
	p.Lots = nil
}

// SweepTakeProfits 止盈扫描：最高价触及批次止盈价即按止盈价成交
// （限价单成交价，不是最高价也不是收盘价），整批移除。
func (p *Portfolio) SweepTakeProfits(t time.Time, high float64) {
	remaining := p.Lots[:0]
	for _, lot := range p.Lots {
		if lot.TakeProfit > 0 && high >= lot.TakeProfit {
			proceeds := lot.Shares * lot.TakeProfit
			p.Cash += proceeds
			p.Shares -= lot.Shares
			p.record(t, ActionSellTP, lot.TakeProfit, lot.Shares, proceeds,
				fmt.Sprintf("止盈触发 (成本 %.2f)", lot.EntryPrice))
			continue
		}
		remaining = append(remaining, lot)
	}
	p.Lots = remaining
}

// reduceFIFO 从最早的批次开始移除指定股数：整批消耗直到剩余需求
// 落在某一批内，该批部分减持且止盈价保持不变，之后的批次不动。
func (p *Portfolio) reduceFIFO(shares float64) {
	removed := 0.0
	remaining := p.Lots[:0]
	for _, lot := range p.Lots {
		if removed >= shares {
			remaining = append(remaining, lot)
			continue
		}
		needed := shares - removed
		if lot.Shares > needed {
			lot.Shares -= needed
			removed += needed
			remaining = append(remaining, lot)
			continue
		}
		removed += lot.Shares
		// 整批移除
	}
	p.Lots = remaining
}

// Rebalance 新高再平衡：仓位超过阈值时按收盘价减持到目标仓位，
// FIFO消耗批次。返回是否发生了减持。
func (p *Portfolio) Rebalance(t time.Time, close, threshold, target float64) bool {
	stockValue := p.Shares * close
	total := p.Cash + stockValue
	if total <= 0 {
		return false
	}
	allocation := stockValue / total
	if allocation <= threshold {
		return false
	}
	sellValue := stockValue - total*target
	if sellValue <= 0 {
		return false
	}
	sellShares := sellValue / close
	p.Cash += sellValue
	p.Shares -= sellShares
	p.reduceFIFO(sellShares)
	p.record(t, ActionSellRebalance, close, sellShares, sellValue,
		fmt.Sprintf("新高再平衡 (仓位 %.1f%%)", allocation*100))
	return true
}

// Signal 记录一条不改变持仓的信号事件
func (p *Portfolio) Signal(t time.Time, price float64, reason string) {
	p.record(t, ActionSignal, price, 0, 0, reason)
}

func (p *Portfolio) record(t time.Time, action TradeAction, price, shares, cashDelta float64, reason string) {
	p.Trades = append(p.Trades, TradeRecord{
		Time:      t.Format("2006-01-02"),
		Action:    action,
		Price:     round2(price),
		Shares:    round2(shares),
		CashDelta: round2(cashDelta),
		Reason:    reason,
	})
}

// LotShares 批次股数合计，应始终与Shares一致
func (p *Portfolio) LotShares() float64 {
	sum := 0.0
	for _, lot := range p.Lots {
		sum += lot.Shares
	}
	return sum
}
