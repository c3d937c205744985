//go:build darwin

package hotkey

import (
	"context"
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// modifierMap maps modifier name strings to hotkey.Modifier values.
var modifierMap = map[string]hotkey.Modifier{
	"OPTION": hotkey.ModOption,
	"ALT":    hotkey.ModOption,
	"CTRL":   hotkey.ModCtrl,
	"SHIFT":  hotkey.ModShift,
	"CMD":    hotkey.ModCmd,
}

// keyMap maps key name strings to hotkey.Key values.
var keyMap = map[string]hotkey.Key{
	"SPACE":  hotkey.KeySpace,
	"RETURN": hotkey.KeyReturn,
	"ESCAPE": hotkey.KeyEscape,
	"DELETE": hotkey.KeyDelete,
	"TAB":    hotkey.KeyTab,
	"F1":     hotkey.KeyF1,
	"F2":     hotkey.KeyF2,
	"F3":     hotkey.KeyF3,
	"F4":     hotkey.KeyF4,
	"F5":     hotkey.KeyF5,
	"F6":     hotkey.KeyF6,
	"F7":     hotkey.KeyF7,
	"F8":     hotkey.KeyF8,
	"F9":     hotkey.KeyF9,
	"F10":    hotkey.KeyF10,
	"F11":    hotkey.KeyF11,
	"F12":    hotkey.KeyF12,
	"F13":    hotkey.KeyF13,
	"F14":    hotkey.KeyF14,
	"F15":    hotkey.KeyF15,
	"F16":    hotkey.KeyF16,
	"F17":    hotkey.KeyF17,
	"F18":    hotkey.KeyF18,
	"F19":    hotkey.KeyF19,
	"F20":    hotkey.KeyF20,
	"J":      hotkey.KeyJ,
}

// evdevKeyMap accepts evdev-style KEY_ names so the same config file
// works on both platforms. A bare evdev key gets Option as its modifier
// because macOS cannot register an unmodified global key.
var evdevKeyMap = map[string]hotkey.Key{
	"KEY_SPACE": hotkey.KeySpace,
	"KEY_ENTER": hotkey.KeyReturn,
	"KEY_ESC":   hotkey.KeyEscape,
	"KEY_TAB":   hotkey.KeyTab,
	"KEY_F1":    hotkey.KeyF1,
	"KEY_F2":    hotkey.KeyF2,
	"KEY_F3":    hotkey.KeyF3,
	"KEY_F4":    hotkey.KeyF4,
	"KEY_F5":    hotkey.KeyF5,
	"KEY_F6":    hotkey.KeyF6,
	"KEY_F7":    hotkey.KeyF7,
	"KEY_F8":    hotkey.KeyF8,
	"KEY_F9":    hotkey.KeyF9,
	"KEY_F10":   hotkey.KeyF10,
	"KEY_F11":   hotkey.KeyF11,
	"KEY_F12":   hotkey.KeyF12,
	"KEY_F13":   hotkey.KeyF13,
	"KEY_F14":   hotkey.KeyF14,
	"KEY_F15":   hotkey.KeyF15,
	"KEY_F16":   hotkey.KeyF16,
	"KEY_F17":   hotkey.KeyF17,
	"KEY_F18":   hotkey.KeyF18,
	"KEY_F19":   hotkey.KeyF19,
	"KEY_F20":   hotkey.KeyF20,
}

// ParseJamKey parses a jam-key string like "f9", "Option+Space", or an
// evdev-style "KEY_F9" into modifiers, a key, and a display name. Bare
// keys register with no modifier when possible; bare evdev names get
// Option attached.
func ParseJamKey(combo string) ([]hotkey.Modifier, hotkey.Key, string, error) {
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return nil, 0, "", fmt.Errorf("empty jam key")
	}

	upper := strings.ToUpper(combo)

	if strings.HasPrefix(upper, "KEY_") {
		key, ok := evdevKeyMap[upper]
		if !ok {
			return nil, 0, "", fmt.Errorf("unknown evdev key: %s (on macOS, use combos like Option+Space)", combo)
		}
		return []hotkey.Modifier{hotkey.ModOption}, key, combo, nil
	}

	parts := strings.Split(combo, "+")

	var mods []hotkey.Modifier
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifierMap[strings.ToUpper(strings.TrimSpace(part))]
		if !ok {
			return nil, 0, "", fmt.Errorf("unknown modifier: %s (valid: Option, Alt, Ctrl, Shift, Cmd)", part)
		}
		mods = append(mods, mod)
	}

	keyStr := strings.TrimSpace(parts[len(parts)-1])
	key, ok := keyMap[strings.ToUpper(keyStr)]
	if !ok {
		return nil, 0, "", fmt.Errorf("unknown key: %s", keyStr)
	}

	return mods, key, combo, nil
}

// darwinListener registers the jam key through golang.design/x/hotkey.
type darwinListener struct {
	mods    []hotkey.Modifier
	key     hotkey.Key
	keyName string
	hk      *hotkey.Hotkey
}

// NewListener creates a darwin Listener for the given modifiers, key,
// and display name.
func NewListener(mods []hotkey.Modifier, key hotkey.Key, keyName string) Listener {
	return &darwinListener{mods: mods, key: key, keyName: keyName}
}

// Start registers the hotkey and listens for press/release events.
// It blocks until the context is cancelled.
func (l *darwinListener) Start(ctx context.Context, onDown func(), onUp func()) error {
	l.hk = hotkey.New(l.mods, l.key)
	if err := l.hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w (grant Accessibility permissions in System Settings > Privacy & Security)", l.keyName, err)
	}

	for {
		select {
		case <-ctx.Done():
			l.hk.Unregister()
			return ctx.Err()
		case <-l.hk.Keydown():
			if onDown != nil {
				onDown()
			}
		case <-l.hk.Keyup():
			if onUp != nil {
				onUp()
			}
		}
	}
}

// Stop unregisters the hotkey.
func (l *darwinListener) Stop() {
	if l.hk != nil {
		l.hk.Unregister()
	}
}

// KeyName returns the configured jam-key string.
func (l *darwinListener) KeyName() string {
	return l.keyName
}
