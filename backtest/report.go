package backtest

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"quantlab/model"
)

// CompareStrategies 在同一条K线序列上并行运行多个策略并收集结果。
// 每个策略独立持有一份组合状态，互不干扰；输出顺序与传入顺序一致。
func CompareStrategies(symbol string, bars []model.PriceBar, cfg RunConfig, types []string) ([]Result, error) {
	if len(types) == 0 {
		types = StrategyTypes()
	}

	strategies := make([]Strategy, 0, len(types))
	for _, typ := range types {
		s, err := BuildStrategy(typ, nil)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}

	results := make([]Result, len(strategies))
	errs := make([]error, len(strategies))

	var wg sync.WaitGroup
	for idx, strat := range strategies {
		wg.Add(1)
		go func(idx int, strat Strategy) {
			defer wg.Done()
			c := cfg
			c.Strategy = strat
			res, err := RunSeries(symbol, bars, c)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = *res
		}(idx, strat)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// WriteComparisonTable 输出策略对比表，按最终权益降序。
// 金额与百分比列用定点十进制格式化，避免浮点尾差污染展示。
func WriteComparisonTable(w io.Writer, symbol string, results []Result) {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FinalEquity > sorted[j].FinalEquity
	})

	fmt.Fprintf(w, "标的: %s\n", symbol)
	fmt.Fprintf(w, "%-14s %14s %14s %10s %10s %10s %8s\n",
		"策略", "最终权益", "累计投入", "总收益%", "年化%", "最大回撤%", "交易数")
	fmt.Fprintln(w, strings.Repeat("-", 88))

	for _, r := range sorted {
		invested := decimal.NewFromFloat(r.InitialCash).Add(decimal.NewFromFloat(r.Injected))
		fmt.Fprintf(w, "%-14s %14s %14s %10s %10s %10s %8d\n",
			r.Strategy,
			decimal.NewFromFloat(r.FinalEquity).StringFixed(2),
			invested.StringFixed(2),
			decimal.NewFromFloat(r.TotalReturnPct).StringFixed(2),
			decimal.NewFromFloat(r.CAGRPct).StringFixed(2),
			decimal.NewFromFloat(r.MaxDDPct).StringFixed(2),
			r.TotalTrades)
	}
}

// WriteTradeLog 按时间输出成交明细
func WriteTradeLog(w io.Writer, r Result) {
	fmt.Fprintf(w, "策略 %s 成交明细 (%d 笔):\n", r.Strategy, len(r.Trades))
	for _, t := range r.Trades {
		fmt.Fprintf(w, "  %s  %-15s %10s @ %s  现金变动 %s  %s\n",
			t.Time,
			t.Action,
			decimal.NewFromFloat(t.Shares).StringFixed(2),
			decimal.NewFromFloat(t.Price).StringFixed(2),
			decimal.NewFromFloat(t.CashDelta).StringFixed(2),
			t.Reason)
	}
}
