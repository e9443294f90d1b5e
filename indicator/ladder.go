package indicator

import "quantlab/model"

// LadderResult 双梯子通道：蓝色短周期、黄色长周期，上下沿分别取
// 最高价/最低价的EMA，趋势位取收盘价相对蓝色通道的位置。
type LadderResult struct {
	BlueTop      []float64
	BlueBottom   []float64
	YellowTop    []float64
	YellowBottom []float64
	// Trend: +1 收盘在蓝色上沿之上, -1 收盘在蓝色下沿之下, 0 通道内
	Trend []int
}

// Ladder computes the dual EMA envelope over a bar series.
func Ladder(bars []model.PriceBar, shortSpan, longSpan int) LadderResult {
	if len(bars) == 0 {
		return LadderResult{}
	}
	highs := model.Highs(bars)
	lows := model.Lows(bars)

	res := LadderResult{
		BlueTop:      EMA(highs, shortSpan),
		BlueBottom:   EMA(lows, shortSpan),
		YellowTop:    EMA(highs, longSpan),
		YellowBottom: EMA(lows, longSpan),
		Trend:        make([]int, len(bars)),
	}
	for i, b := range bars {
		switch {
		case b.Close > res.BlueTop[i]:
			res.Trend[i] = 1
		case b.Close < res.BlueBottom[i]:
			res.Trend[i] = -1
		}
	}
	return res
}
