package indicator

import (
	"math"

	"quantlab/model"
)

// BottomSignal flags bars where price makes a new short-term low while
// the MACD histogram's down-leg is not making a correspondingly deep
// low (a bullish divergence) and histogram momentum is decelerating
// toward zero. The output is edge-triggered: at most one 1 per
// divergence event.
//
// The detector is a single forward pass over the series. Two "bars
// since sign flip" counters are maintained over the histogram (turned
// negative: prev >= 0 && cur < 0; turned positive: prev <= 0 && cur > 0,
// with the pre-series histogram treated as 0). The red-to-green segment
// ending at i spans [i-n1, i]; walking back mm1+1 bars lands on the end
// of the previous same-polarity segment, and the same step again on the
// one before that. Each segment contributes its close minimum and DIF
// minimum; the divergence conditions compare those triples.
//
// Undefined counters (no flip observed yet) suppress evaluation for
// that bar: the bar emits 0, never an error.
func BottomSignal(closes, dif, hist []float64) []int {
	n := len(closes)
	signals := make([]int, n)
	if n == 0 || len(dif) != n || len(hist) != n {
		return signals
	}

	// bars-since counters, filled as the pass advances; -1 = undefined
	n1Arr := make([]int, n)
	mm1Arr := make([]int, n)
	lastGreen, lastRed := -1, -1

	cccPrev := false
	jjjPrev := false

	for i := 0; i < n; i++ {
		prevHist := 0.0
		if i > 0 {
			prevHist = hist[i-1]
		}
		if prevHist >= 0 && hist[i] < 0 {
			lastGreen = i
		}
		if prevHist <= 0 && hist[i] > 0 {
			lastRed = i
		}
		n1Arr[i] = barsSince(i, lastGreen)
		mm1Arr[i] = barsSince(i, lastRed)

		if i == 0 {
			continue
		}

		ccc, evaluated := divergenceCandidate(i, closes, dif, prevHist, n1Arr, mm1Arr)
		if !evaluated {
			cccPrev = false
			jjjPrev = false
			continue
		}

		// 确认转折：前一根是背离候选且柱体绝对值收缩至少1%
		// （前一根柱体为0视为未收缩）
		jjj := cccPrev && prevHist != 0 && math.Abs(prevHist) >= math.Abs(hist[i])*1.01
		if jjj && !jjjPrev {
			signals[i] = 1
		}
		cccPrev = ccc
		jjjPrev = jjj
	}
	return signals
}

// divergenceCandidate evaluates the "ccc" condition at bar i. evaluated
// is false when the sign-flip counters leave the bar undefined.
func divergenceCandidate(i int, closes, dif []float64, prevHist float64, n1Arr, mm1Arr []int) (ccc, evaluated bool) {
	n1 := n1Arr[i]
	mm1 := mm1Arr[i]
	if n1 < 0 || mm1 < 0 {
		return false, false
	}

	cc1 := segMin(closes, i-n1, i)
	difl1 := segMin(dif, i-n1, i)

	idxPrev := i - (mm1 + 1)
	if idxPrev < 0 {
		return false, false
	}
	n1Prev := 0
	if n1Arr[idxPrev] >= 0 {
		n1Prev = n1Arr[idxPrev]
	}
	cc2 := segMin(closes, idxPrev-n1Prev, idxPrev)
	difl2 := segMin(dif, idxPrev-n1Prev, idxPrev)

	cc3 := math.Inf(1)
	difl3 := math.Inf(-1)
	if mm1Arr[idxPrev] >= 0 {
		idxPrev2 := idxPrev - (mm1Arr[idxPrev] + 1)
		if idxPrev2 >= 0 {
			n1Prev2 := 0
			if n1Arr[idxPrev2] >= 0 {
				n1Prev2 = n1Arr[idxPrev2]
			}
			cc3 = segMin(closes, idxPrev2-n1Prev2, idxPrev2)
			difl3 = segMin(dif, idxPrev2-n1Prev2, idxPrev2)
		}
	}

	isGreen := prevHist < 0 && dif[i] < 0
	aaa := cc1 < cc2 && difl1 > difl2 && isGreen
	bbb := cc1 < cc3 && difl1 < difl2 && difl1 > difl3 && isGreen
	return (aaa || bbb) && dif[i] < 0, true
}

func barsSince(i, last int) int {
	if last < 0 {
		return -1
	}
	return i - last
}

func segMin(values []float64, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	m := values[from]
	for j := from + 1; j <= to; j++ {
		if values[j] < m {
			m = values[j]
		}
	}
	return m
}

// RelaxedBottomSignal is a looser rolling-window variant: price within
// 1% of the lookback low while DIF sits clearly above its own window
// minimum, histogram rising, DIF still negative. Useful for scans where
// the strict detector is too quiet.
func RelaxedBottomSignal(bars []model.PriceBar, lookback int) []int {
	n := len(bars)
	signals := make([]int, n)
	if n == 0 || lookback <= 0 {
		return signals
	}
	closes := model.Closes(bars)
	lows := model.Lows(bars)
	m := MACD(closes, DefaultFastSpan, DefaultSlowSpan, DefaultSignalSpan)

	for i := lookback; i < n; i++ {
		lowestP := segMin(lows, i-lookback+1, i)
		lowestD := segMin(m.DIF, i-lookback+1, i)

		priceLow := lows[i] <= lowestP*1.01
		divergence := priceLow && m.DIF[i] > lowestD+0.05
		momentumUp := m.Hist[i] > m.Hist[i-1]

		if divergence && momentumUp && m.DIF[i] < 0 {
			signals[i] = 1
		}
	}
	return signals
}
