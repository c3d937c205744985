package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/allinfinite/R2DJ/internal/effects"
)

// CaptureConfig holds live input settings.
type CaptureConfig struct {
	EngineSampleRate int     `toml:"engine_sample_rate"`
	ChunkSec         float64 `toml:"chunk_sec"`
}

// SlicerConfig holds segmentation and store settings.
type SlicerConfig struct {
	Threshold   float64 `toml:"threshold"`
	MinSliceSec float64 `toml:"min_slice_sec"`
	MaxSliceSec float64 `toml:"max_slice_sec"`
	Capacity    int     `toml:"capacity"`
}

// AmbientConfig holds loop scheduling settings.
type AmbientConfig struct {
	LifetimeSec  float64 `toml:"lifetime_sec"`
	FeedbackGain float64 `toml:"feedback_gain"`
	VolumeFloor  float64 `toml:"volume_floor"`
}

// HotkeyConfig holds the global hold-to-jam key settings.
type HotkeyConfig struct {
	Key    string `toml:"key"`
	Device string `toml:"device"`
}

// ServerConfig holds the remote control endpoint settings.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Config is the top-level configuration.
type Config struct {
	Theme   string        `toml:"theme"`
	Capture CaptureConfig `toml:"capture"`
	Slicer  SlicerConfig  `toml:"slicer"`
	Ambient AmbientConfig `toml:"ambient"`
	Effects effects.State `toml:"effects"`
	Hotkey  HotkeyConfig  `toml:"hotkey"`
	Server  ServerConfig  `toml:"server"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Theme: "synthwave",
		Capture: CaptureConfig{
			EngineSampleRate: 44100,
			ChunkSec:         2.0,
		},
		Slicer: SlicerConfig{
			Threshold:   0.05,
			MinSliceSec: 0.04,
			MaxSliceSec: 1.5,
			Capacity:    16,
		},
		Ambient: AmbientConfig{
			LifetimeSec:  36,
			FeedbackGain: 0.5,
			VolumeFloor:  0.15,
		},
		Effects: effects.State{
			PadX:        0.5,
			PadY:        0.0,
			ReverbMix:   0.3,
			DelayMix:    0.2,
			AmbientGain: 0.7,
			Feedback:    0.3,
		},
		Hotkey: HotkeyConfig{
			Key:    defaultHotkeyKey,
			Device: "",
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "localhost:5093",
		},
	}
}

// DefaultPath returns the default config file path (~/.config/r2dj/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "r2dj", "config.toml")
}

// DefaultExportDir returns the default slice export directory
// (~/.local/share/r2dj).
func DefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "r2dj")
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place so a crash mid-write cannot
// corrupt the existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".r2dj-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
