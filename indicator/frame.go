package indicator

import "quantlab/model"

// 缺省指标周期
const (
	DefaultShortSpan  = 26
	DefaultLongSpan   = 89
	DefaultFastSpan   = 12
	DefaultSlowSpan   = 26
	DefaultSignalSpan = 9
)

// Spans 指标参数集
type Spans struct {
	LadderShort int
	LadderLong  int
	MACDFast    int
	MACDSlow    int
	MACDSignal  int
}

func (s Spans) withDefaults() Spans {
	if s.LadderShort <= 0 {
		s.LadderShort = DefaultShortSpan
	}
	if s.LadderLong <= 0 {
		s.LadderLong = DefaultLongSpan
	}
	if s.MACDFast <= 0 {
		s.MACDFast = DefaultFastSpan
	}
	if s.MACDSlow <= 0 {
		s.MACDSlow = DefaultSlowSpan
	}
	if s.MACDSignal <= 0 {
		s.MACDSignal = DefaultSignalSpan
	}
	return s
}

// Frame 每根K线的衍生指标，与输入序列1:1对齐。
// 对同一序列重复计算结果相同；序列扩展后需整体重算。
type Frame struct {
	Ladder LadderResult
	DIF    []float64
	DEA    []float64
	Hist   []float64
	Bottom []int
}

// NewFrame computes all per-bar derived fields for a bar series.
func NewFrame(bars []model.PriceBar, spans Spans) *Frame {
	spans = spans.withDefaults()
	closes := model.Closes(bars)
	m := MACD(closes, spans.MACDFast, spans.MACDSlow, spans.MACDSignal)

	return &Frame{
		Ladder: Ladder(bars, spans.LadderShort, spans.LadderLong),
		DIF:    m.DIF,
		DEA:    m.DEA,
		Hist:   m.Hist,
		Bottom: BottomSignal(closes, m.DIF, m.Hist),
	}
}
