//go:build darwin

package main

import (
	"log"

	"github.com/gordonklaus/portaudio"

	"github.com/allinfinite/R2DJ/internal/config"
	"github.com/allinfinite/R2DJ/internal/hotkey"
)

func createListener(cfg *config.Config, dbg *log.Logger) (hotkey.Listener, error) {
	mods, key, keyName, err := hotkey.ParseJamKey(cfg.Hotkey.Key)
	if err != nil {
		return nil, err
	}
	dbg.Printf("hotkey: %s", keyName)

	return hotkey.NewListener(mods, key, keyName), nil
}

// initPortAudio initializes PortAudio. CoreAudio produces no ALSA/JACK
// noise, so no stderr suppression is needed.
func initPortAudio() error {
	return portaudio.Initialize()
}
