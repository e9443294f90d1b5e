package recorder

import "quantlab/backtest"

// Recorder 回测结果持久化接口。实现必须可安全并发调用。
type Recorder interface {
	// RecordRun 保存一次回测的汇总、成交与权益曲线，返回运行ID
	RecordRun(result backtest.Result) (string, error)
	// ListRuns 返回最近的运行汇总，按时间倒序
	ListRuns(limit int) ([]RunSummary, error)
	Close() error
}

// RunSummary 已落库的一次回测运行
type RunSummary struct {
	ID             string  `json:"id"`
	CreatedAt      string  `json:"created_at"`
	Symbol         string  `json:"symbol"`
	Strategy       string  `json:"strategy"`
	InitialCash    float64 `json:"initial_cash"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDDPct       float64 `json:"max_drawdown_pct"`
	TotalTrades    int     `json:"total_trades"`
}

// Noop 不落库的空实现
type Noop struct{}

func (Noop) RecordRun(backtest.Result) (string, error) { return "", nil }
func (Noop) ListRuns(int) ([]RunSummary, error)        { return nil, nil }
func (Noop) Close() error                              { return nil }
