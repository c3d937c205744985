//go:build linux

package capture

import (
	"os/exec"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// MicName returns a human-readable name for the default input device.
// It asks pactl (PulseAudio/PipeWire) for a descriptive name first, then
// falls back to the PortAudio device name.
func MicName() string {
	if name := micNameFromPactl(); name != "" {
		return name
	}
	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		return ""
	}
	return dev.Name
}

func micNameFromPactl() string {
	out, err := exec.Command("pactl", "get-default-source").Output()
	if err != nil {
		return ""
	}
	sourceName := strings.TrimSpace(string(out))
	if sourceName == "" {
		return ""
	}

	out, err = exec.Command("pactl", "list", "sources").Output()
	if err != nil {
		return ""
	}

	inSource := false
	for _, line := range strings.Split(string(out), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Name: ") {
			inSource = strings.TrimPrefix(trimmed, "Name: ") == sourceName
		}
		if inSource && strings.HasPrefix(trimmed, "Description: ") {
			desc := strings.TrimPrefix(trimmed, "Description: ")
			// Monitor sources capture output, not the mic.
			if strings.HasPrefix(desc, "Monitor of ") {
				return ""
			}
			return desc
		}
	}
	return ""
}
