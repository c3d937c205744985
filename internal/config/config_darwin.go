//go:build darwin

package config

// defaultHotkeyKey names the hold-to-jam key; evdev-style names are
// accepted too and translated by the hotkey package.
const defaultHotkeyKey = "f9"
