// Package defaults holds some commonly used options parsed from env var "recorder".
// Set them will set the default value of the options used by the recorder CLI.
// Each value is separated by a ",", key and value are separated by "=",
// For example:
//
//	recorder=show,debug
//
//	recorder=bin=/usr/bin/chromium,encoder=/opt/homebrew/bin/ffmpeg,dir=videos,monitor=:9273
package defaults

import (
	"os"
	"strings"
)

// Show disables headless mode
var Show bool

// Debug enables debug logs, including the output of the encoder
var Debug bool

// NoSandbox disables the sandbox of the browser, usually needed in docker
var NoSandbox bool

// Bin of the browser, empty to let the launcher find or download one
var Bin string

// Encoder is the path of the ffmpeg binary
var Encoder string

// Dir to save the videos
var Dir string

// Monitor is the address of the live preview server, empty to disable it
var Monitor string

// Probe enables checking the output file with ffprobe
var Probe bool

// Parse the flags
func init() {
	ResetWithEnv()
}

// Reset all flags to their init values.
func Reset() {
	Show = false
	Debug = false
	NoSandbox = false
	Bin = ""
	Encoder = ""
	Dir = "."
	Monitor = ""
	Probe = false
}

// ResetWithEnv all flags by the value of the recorder env var.
func ResetWithEnv() {
	Reset()
	parse(os.Getenv("recorder"))
}

// parse options and set them globally
func parse(options string) {
	if options == "" {
		return
	}

	for _, f := range strings.Split(options, ",") {
		kv := strings.SplitN(f, "=", 2)

		rule, has := rules[kv[0]]
		if !has {
			panic("no such recorder option: " + kv[0])
		}

		if len(kv) == 2 {
			rule(kv[1])
		} else {
			rule("")
		}
	}
}

var rules = map[string]func(string){
	"show": func(string) {
		Show = true
	},
	"debug": func(string) {
		Debug = true
	},
	"no-sandbox": func(string) {
		NoSandbox = true
	},
	"bin": func(v string) {
		Bin = v
	},
	"encoder": func(v string) {
		Encoder = v
	},
	"dir": func(v string) {
		Dir = v
	},
	"monitor": func(v string) {
		Monitor = ":9273"
		if v != "" {
			Monitor = v
		}
	},
	"probe": func(string) {
		Probe = true
	},
}
