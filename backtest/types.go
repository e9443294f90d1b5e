package backtest

import "math"

type TradeAction string

const (
	ActionBuy           TradeAction = "BUY"
	ActionSell          TradeAction = "SELL"
	ActionSellTP        TradeAction = "SELL_TP"
	ActionSellRebalance TradeAction = "SELL_REBALANCE"
	ActionSignal        TradeAction = "SIGNAL"
)

// Lot 一笔买入批次，带独立成本价与止盈价。止盈价为0表示无挂单。
type Lot struct {
	EntryPrice float64 `json:"entry_price"`
	Shares     float64 `json:"shares"`
	TakeProfit float64 `json:"take_profit,omitempty"`
}

// TradeRecord 成交/信号日志，按发生顺序追加
type TradeRecord struct {
	Time      string      `json:"time"`
	Action    TradeAction `json:"action"`
	Price     float64     `json:"price"`
	Shares    float64     `json:"shares"`
	CashDelta float64     `json:"cash_delta"`
	Reason    string      `json:"reason,omitempty"`
}

// EquityPoint 每根K线一条的权益曲线记录
type EquityPoint struct {
	Time          string  `json:"time"`
	Equity        float64 `json:"equity"`
	Cash          float64 `json:"cash"`
	StockValue    float64 `json:"stock_value"`
	DrawdownPct   float64 `json:"drawdown_pct"`
	AllocationPct float64 `json:"allocation_pct"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
