package dsp

import "testing"

func TestBandEnergyLowSine(t *testing.T) {
	samples := sine(100, 44100, 2048, 0.8)
	b := BandEnergy(samples, 44100)
	if b.Low <= b.Mid || b.Low <= b.High {
		t.Errorf("100 Hz sine should be low-dominant: %+v", b)
	}
}

func TestBandEnergyHighSine(t *testing.T) {
	samples := sine(4000, 44100, 2048, 0.8)
	b := BandEnergy(samples, 44100)
	if b.High <= b.Low || b.High <= b.Mid {
		t.Errorf("4 kHz sine should be high-dominant: %+v", b)
	}
}

func TestBandEnergyEmpty(t *testing.T) {
	if b := BandEnergy(nil, 44100); b != (Bands{}) {
		t.Errorf("expected zero bands, got %+v", b)
	}
}
