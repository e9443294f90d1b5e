package indicator

import (
	"testing"
	"time"

	"quantlab/model"
)

// Hand-built series with one red-to-green cycle before the divergence
// leg. The segment ending at bar 8 makes a lower close low (9 vs 10)
// while its DIF low stays above the previous leg's (-1 vs -2), and the
// histogram shrinks by more than 1% into bar 9.
func divergenceFixture() (closes, dif, hist []float64) {
	closes = []float64{11, 11, 10, 10.1, 11, 11.5, 10.5, 10.2, 9, 9.2, 9.5}
	dif = []float64{0.5, 0.6, -1.5, -2.0, 0.3, 0.4, -0.8, -0.9, -1.0, -0.4, -0.3}
	hist = []float64{1, 1, -1, -1.2, 1, 1, -0.6, -0.8, -1.0, -0.5, -0.3}
	return
}

func TestBottomSignalFiresOnceOnDivergence(t *testing.T) {
	closes, dif, hist := divergenceFixture()
	got := BottomSignal(closes, dif, hist)

	total := 0
	for i, s := range got {
		if s == 1 && i != 9 {
			t.Fatalf("unexpected signal at bar %d", i)
		}
		total += s
	}
	if total != 1 || got[9] != 1 {
		t.Fatalf("expected exactly one signal at bar 9, got %v", got)
	}
}

func TestBottomSignalEdgeTriggered(t *testing.T) {
	// Bars 9 and 10 are both confirming bars (the histogram keeps
	// shrinking), but only the first may emit.
	closes, dif, hist := divergenceFixture()
	got := BottomSignal(closes, dif, hist)
	if got[9] != 1 {
		t.Fatalf("expected signal at bar 9, got %v", got)
	}
	if got[10] != 0 {
		t.Fatal("signal must not repeat while the confirmed-turn state holds")
	}
}

func TestBottomSignalZeroHistogramGuard(t *testing.T) {
	closes, dif, hist := divergenceFixture()
	hist[8] = 0 // zero previous histogram: shrink condition must be false
	got := BottomSignal(closes, dif, hist)
	for i, s := range got {
		if s != 0 {
			t.Fatalf("unexpected signal at bar %d with zero prior histogram", i)
		}
	}
}

func TestBottomSignalIdempotent(t *testing.T) {
	closes, dif, hist := divergenceFixture()
	first := BottomSignal(closes, dif, hist)
	second := BottomSignal(closes, dif, hist)
	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic output at bar %d: %d vs %d", i, first[i], second[i])
		}
	}
}

// Staggered two-leg divergence: the current leg's DIF low sits below
// the previous leg's but above the one before that, while price is
// below the low of the oldest leg.
func TestBottomSignalStaggeredDivergence(t *testing.T) {
	closes := []float64{11, 11, 10, 10.2, 11, 11, 10.5, 10.3, 11, 11, 9.2, 9.0, 9.3, 9.5}
	dif := []float64{0.5, 0.5, -2.5, -3.0, 0.5, 0.5, -1.0, -0.8, 0.5, 0.5, -1.5, -2.0, -1.0, -0.5}
	hist := []float64{1, 1, -1, -1, 1, 1, -1, -1, 1, 1, -0.9, -1.0, -0.5, -0.3}

	got := BottomSignal(closes, dif, hist)
	total := 0
	for i, s := range got {
		if s == 1 && i != 12 {
			t.Fatalf("unexpected signal at bar %d", i)
		}
		total += s
	}
	if total != 1 || got[12] != 1 {
		t.Fatalf("expected exactly one signal at bar 12, got %v", got)
	}
}

func TestBottomSignalUndefinedCountersSuppress(t *testing.T) {
	// Histogram never changes sign: no flip is ever observed, so the
	// detector must stay silent for the whole series.
	n := 30
	closes := make([]float64, n)
	dif := make([]float64, n)
	hist := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 10 - float64(i)*0.1
		dif[i] = -1
		hist[i] = -0.5
	}
	for i, s := range BottomSignal(closes, dif, hist) {
		if s != 0 {
			t.Fatalf("unexpected signal at bar %d without any sign flip", i)
		}
	}
}

func TestRelaxedBottomSignalQuietOnUptrend(t *testing.T) {
	bars := make([]model.PriceBar, 60)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		p := 10 + float64(i)*0.2
		bars[i] = model.PriceBar{Time: base.AddDate(0, 0, i), Open: p, High: p + 0.1, Low: p - 0.1, Close: p, Volume: 100}
	}
	for i, s := range RelaxedBottomSignal(bars, 30) {
		if s != 0 {
			t.Fatalf("unexpected relaxed signal at bar %d on a steady uptrend", i)
		}
	}
}
