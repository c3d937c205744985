//go:build linux

package main

func osMain() {
	run()
}
