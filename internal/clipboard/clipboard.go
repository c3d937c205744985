// Package clipboard copies the current effect settings to the system
// clipboard as a TOML fragment, ready to paste into a config file.
package clipboard

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	atclip "github.com/atotto/clipboard"

	"github.com/allinfinite/R2DJ/internal/effects"
)

// EncodePreset renders the effect state as the [effects] table of a
// config file.
func EncodePreset(s effects.State) (string, error) {
	var b strings.Builder
	b.WriteString("[effects]\n")

	if err := toml.NewEncoder(&b).Encode(s); err != nil {
		return "", fmt.Errorf("encode preset: %w", err)
	}
	return b.String(), nil
}

// CopyPreset puts the encoded preset on the system clipboard.
func CopyPreset(s effects.State) error {
	text, err := EncodePreset(s)
	if err != nil {
		return err
	}
	if err := atclip.WriteAll(text); err != nil {
		return fmt.Errorf("write to clipboard: %w", err)
	}
	return nil
}
