package dsp

// Plausible fundamental range for voice and most instruments. Lags outside
// this band are never correlated, which keeps the estimate cheap.
const (
	MinPitchHz = 80.0
	MaxPitchHz = 800.0
)

// EstimatePitch returns an autocorrelation-based guess of the fundamental
// frequency of samples, in Hz, or 0 when the frame is shorter than the
// longest candidate lag. Only lags corresponding to [MinPitchHz, MaxPitchHz]
// are searched and the argmax lag wins.
//
// There is no confidence gate: a silent or noisy frame has a near-flat
// correlation and still produces an argmax. Callers must not treat a
// nonzero return as evidence that a pitch is actually present.
func EstimatePitch(samples []float64, sampleRate int) float64 {
	if sampleRate <= 0 || len(samples) == 0 {
		return 0
	}

	minLag := int(float64(sampleRate) / MaxPitchHz)
	maxLag := int(float64(sampleRate) / MinPitchHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(samples) {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for i := 0; i+lag < len(samples); i++ {
			corr += samples[i] * samples[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return 0
	}
	return float64(sampleRate) / float64(bestLag)
}
