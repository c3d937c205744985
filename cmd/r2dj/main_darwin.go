//go:build darwin

package main

import "golang.design/x/mainthread"

func osMain() {
	// golang.design/x/hotkey needs the process main thread on macOS.
	mainthread.Init(run)
}
