//go:build windows

// Package reaper is a no-op on Windows, there are no zombie processes to reap.
package reaper

import "os"

// Run does nothing on Windows
func Run() {}

// Supervised is always false on Windows
func Supervised() bool {
	return false
}

// Exit the process
func Exit(code int) {
	os.Exit(code)
}
