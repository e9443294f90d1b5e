package indicator

// EMA computes an exponential moving average with smoothing factor
// alpha = 2/(span+1), seeded by the first observation. The output has
// the same length as the input and the first output equals the first
// input (no warm-up bias correction).
func EMA(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1.0-alpha)*out[i-1]
	}
	return out
}

// SMA computes a simple moving average over a fixed window. Outputs
// before the window fills are NaN-free: they are reported as 0 and the
// Valid companion can be checked instead; callers that treat warm-up
// as "no signal" should use SMAValid.
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// SMAValid reports whether the SMA at index i has a full window behind it.
func SMAValid(i, window int) bool {
	return window > 0 && i >= window-1
}
