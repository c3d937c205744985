package main

import (
	"errors"
	"testing"
	"time"

	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/config"
)

func TestDisabledSourceSurfacesError(t *testing.T) {
	src := &disabledSource{err: errors.New("no default input device")}

	err := src.Start()
	if err == nil {
		t.Fatal("expected saved error from Start")
	}
	if err.Error() != "no default input device" {
		t.Errorf("unexpected error: %v", err)
	}
	if src.State() != capture.StateIdle {
		t.Errorf("expected idle state, got %v", src.State())
	}
	if src.AudioLevel() != 0 {
		t.Errorf("expected zero level, got %f", src.AudioLevel())
	}
	src.Stop() // no-op, must be safe
}

func TestAmbientConfigOverlay(t *testing.T) {
	amb := ambientConfig(config.AmbientConfig{LifetimeSec: 10, FeedbackGain: 0.25, VolumeFloor: 0.1})
	if amb.Lifetime != 10*time.Second {
		t.Errorf("expected 10s lifetime, got %v", amb.Lifetime)
	}
	if amb.FeedbackGain != 0.25 {
		t.Errorf("expected feedback gain 0.25, got %f", amb.FeedbackGain)
	}
	if amb.VolumeFloor != 0.1 {
		t.Errorf("expected volume floor 0.1, got %f", amb.VolumeFloor)
	}

	// Zero values keep the defaults.
	def := ambientConfig(config.AmbientConfig{})
	if def.Lifetime <= 0 || def.FeedbackGain <= 0 || def.VolumeFloor <= 0 {
		t.Errorf("expected defaults for zero config, got %+v", def)
	}
}
