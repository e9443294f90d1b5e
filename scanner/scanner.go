package scanner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quantlab/backtest"
	"quantlab/fetcher"
	"quantlab/indicator"
	"quantlab/metrics"
	"quantlab/model"
)

// SignalReport 单标的最新一根K线的信号快照
type SignalReport struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name,omitempty"`
	LastDate  string  `json:"last_date"`
	LastClose float64 `json:"last_close"`

	// Bottom 严格底背离信号
	Bottom bool `json:"bottom"`
	// RelaxedBottom 宽松条件的底部靠近信号
	RelaxedBottom bool `json:"relaxed_bottom"`

	// Trend 通道趋势: 1多头 -1空头 0震荡
	Trend        int     `json:"trend"`
	BlueTop      float64 `json:"blue_top"`
	BlueBottom   float64 `json:"blue_bottom"`
	YellowTop    float64 `json:"yellow_top"`
	YellowBottom float64 `json:"yellow_bottom"`

	ChartPath string `json:"chart_path,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// Options 扫描参数
type Options struct {
	Watchlist []string
	Days      int
	// RelaxedLookback 宽松底部信号的回看窗口
	RelaxedLookback int

	Chart     bool
	ChartDir  string
	ChartBars int

	// LadderShort/LadderLong 通道均线周期，0用默认
	LadderShort int
	LadderLong  int
}

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = 500
	}
	if o.RelaxedLookback <= 0 {
		o.RelaxedLookback = 30
	}
	if o.ChartDir == "" {
		o.ChartDir = "scan_charts"
	}
	if o.ChartBars <= 0 {
		o.ChartBars = 220
	}
	if o.LadderShort <= 0 {
		o.LadderShort = indicator.DefaultShortSpan
	}
	if o.LadderLong <= 0 {
		o.LadderLong = indicator.DefaultLongSpan
	}
	return o
}

// Scanner 监控列表信号扫描器
type Scanner struct {
	kline *fetcher.KLineFetcher
	names *fetcher.NameFetcher
}

func NewScanner() *Scanner {
	return &Scanner{
		kline: fetcher.NewKLineFetcher(),
		names: fetcher.NewNameFetcher(),
	}
}

// Scan 逐标的拉取K线、计算指标帧并读取最后一根的信号。
// 单标的失败不影响其余标的，错误记入该标的的结果。
func (s *Scanner) Scan(opts Options) ([]SignalReport, error) {
	opts = opts.withDefaults()
	if len(opts.Watchlist) == 0 {
		return nil, fmt.Errorf("监控列表为空")
	}

	var out []SignalReport
	for _, symbol := range opts.Watchlist {
		rep := s.scanOne(symbol, opts)
		out = append(out, rep)
		if len(rep.Errors) > 0 {
			metrics.ScanErrorsTotal.Inc()
			continue
		}
		if rep.Bottom {
			metrics.ScanSignalsTotal.WithLabelValues("bottom").Inc()
		}
		if rep.RelaxedBottom {
			metrics.ScanSignalsTotal.WithLabelValues("relaxed_bottom").Inc()
		}
	}

	s.enrichNames(out)
	metrics.LastScanTimestamp.Set(float64(time.Now().Unix()))
	return out, nil
}

func (s *Scanner) scanOne(symbol string, opts Options) SignalReport {
	rep := SignalReport{Symbol: symbol}

	bars, err := s.kline.FetchDaily(symbol, opts.Days)
	if err != nil {
		rep.Errors = append(rep.Errors, err.Error())
		return rep
	}
	if len(bars) < 50 {
		rep.Errors = append(rep.Errors, fmt.Sprintf("K线不足: %d", len(bars)))
		return rep
	}
	if err := model.ValidateSeries(bars); err != nil {
		rep.Errors = append(rep.Errors, err.Error())
		return rep
	}

	frame := indicator.NewFrame(bars, indicator.Spans{
		LadderShort: opts.LadderShort,
		LadderLong:  opts.LadderLong,
	})
	relaxed := indicator.RelaxedBottomSignal(bars, opts.RelaxedLookback)

	last := len(bars) - 1
	rep.LastDate = bars[last].Time.Format("2006-01-02")
	rep.LastClose = bars[last].Close
	rep.Bottom = frame.Bottom[last] == 1
	rep.RelaxedBottom = relaxed[last] == 1
	rep.Trend = frame.Ladder.Trend[last]
	rep.BlueTop = frame.Ladder.BlueTop[last]
	rep.BlueBottom = frame.Ladder.BlueBottom[last]
	rep.YellowTop = frame.Ladder.YellowTop[last]
	rep.YellowBottom = frame.Ladder.YellowBottom[last]

	if opts.Chart {
		if path, err := s.renderChart(symbol, bars, frame, opts); err != nil {
			log.Printf("[WARN] %s 生成图表失败: %v", symbol, err)
		} else {
			rep.ChartPath = path
		}
	}
	return rep
}

// renderChart 输出带通道与抄底标记的K线SVG
func (s *Scanner) renderChart(symbol string, bars []model.PriceBar, frame *indicator.Frame, opts Options) (string, error) {
	if err := os.MkdirAll(opts.ChartDir, 0o755); err != nil {
		return "", err
	}

	view := bars
	offset := 0
	if len(view) > opts.ChartBars {
		offset = len(bars) - opts.ChartBars
		view = bars[offset:]
	}

	series := []backtest.ChartSeries{
		{Values: frame.Ladder.BlueTop[offset:], Label: "蓝梯上沿", Color: "rgba(56,189,248,0.85)"},
		{Values: frame.Ladder.BlueBottom[offset:], Label: "蓝梯下沿", Color: "rgba(56,189,248,0.85)", Dash: true},
		{Values: frame.Ladder.YellowTop[offset:], Label: "黄梯上沿", Color: "rgba(245,158,11,0.85)"},
		{Values: frame.Ladder.YellowBottom[offset:], Label: "黄梯下沿", Color: "rgba(245,158,11,0.85)", Dash: true},
	}

	var points []backtest.ChartPoint
	for i := offset; i < len(bars); i++ {
		if frame.Bottom[i] == 1 {
			points = append(points, backtest.ChartPoint{
				Date:  bars[i].Time.Format("2006-01-02"),
				Price: bars[i].Low,
				Label: "底",
				Color: "#a78bfa",
			})
		}
	}

	svg, err := backtest.RenderCandlesSVG(symbol, view, series, points, backtest.SVGChartOptions{})
	if err != nil {
		return "", err
	}

	path := filepath.Join(opts.ChartDir, sanitizeChartFilename(symbol)+".svg")
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// enrichNames 批量补全证券名称，查询失败只记日志不阻断
func (s *Scanner) enrichNames(reports []SignalReport) {
	var codes []string
	seen := map[string]struct{}{}
	for _, r := range reports {
		if r.Symbol == "" || len(r.Errors) > 0 {
			continue
		}
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		codes = append(codes, r.Symbol)
	}
	if len(codes) == 0 {
		return
	}

	names, err := s.names.Fetch(codes)
	if err != nil {
		log.Printf("[WARN] 查询证券名称失败: %v", err)
		return
	}
	for i := range reports {
		if reports[i].Name == "" {
			reports[i].Name = names[reports[i].Symbol]
		}
	}
}

func sanitizeChartFilename(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
