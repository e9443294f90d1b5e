package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BacktestsTotal 按策略统计的回测执行次数
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantlab_backtests_total",
			Help: "Number of backtest runs, labelled by strategy.",
		},
		[]string{"strategy"},
	)

	// ScanSignalsTotal 按信号类型统计的扫描命中次数
	ScanSignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantlab_scan_signals_total",
			Help: "Number of signals found during watchlist scans, labelled by signal type.",
		},
		[]string{"type"},
	)

	// LastScanTimestamp 最近一次扫描完成的Unix时间
	LastScanTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantlab_last_scan_timestamp_seconds",
			Help: "Unix timestamp of the most recent completed watchlist scan.",
		},
	)

	// ScanErrorsTotal 扫描中单标的失败次数
	ScanErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quantlab_scan_errors_total",
			Help: "Number of per-symbol failures during watchlist scans.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		BacktestsTotal,
		ScanSignalsTotal,
		LastScanTimestamp,
		ScanErrorsTotal,
	)
}
