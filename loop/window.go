package loop

import "gonum.org/v1/gonum/stat"

// maxRateSamples bounds the rolling window of wall-clock intervals
// used to derive actual rates.
const maxRateSamples = 100

// rateWindow is a fixed-capacity ring of interval samples in seconds.
type rateWindow struct {
	samples [maxRateSamples]float64
	write   int
	count   int
}

func (w *rateWindow) add(interval float64) {
	if interval <= 0 {
		return
	}
	w.samples[w.write] = interval
	w.write = (w.write + 1) % maxRateSamples
	if w.count < maxRateSamples {
		w.count++
	}
}

// rate returns advances per second over the window, 0 when empty.
func (w *rateWindow) rate() float64 {
	if w.count == 0 {
		return 0
	}
	mean := stat.Mean(w.samples[:w.count], nil)
	if mean <= 0 {
		return 0
	}
	return 1.0 / mean
}

func (w *rateWindow) reset() {
	w.write = 0
	w.count = 0
}
