package indicator

// MACDResult holds the MACD family series, aligned 1:1 with the input.
type MACDResult struct {
	DIF  []float64
	DEA  []float64
	Hist []float64
}

// MACD computes DIF = EMA(close, fast) - EMA(close, slow),
// DEA = EMA(DIF, signal), hist = 2*(DIF - DEA).
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	if len(closes) == 0 {
		return MACDResult{}
	}
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	dif := make([]float64, len(closes))
	for i := range closes {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea := EMA(dif, signal)

	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = 2.0 * (dif[i] - dea[i])
	}
	return MACDResult{DIF: dif, DEA: dea, Hist: hist}
}
