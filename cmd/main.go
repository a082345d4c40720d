// Trackpad - gesture server
// Turns gestures sent from a phone into desktop input on Windows and macOS
package main

import (
	"log"
	"runtime"
)

func init() {
	// the tray event loop must own the main thread on macOS
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("trackpad: %v", err)
	}
}
