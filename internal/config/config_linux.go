//go:build linux

package config

// defaultHotkeyKey is the evdev name of the hold-to-jam key.
const defaultHotkeyKey = "KEY_F9"
