// The recorder command loads a web page in a headless browser and records it
// to an mp4 file for the given number of seconds.
//
//	recorder https://example.com 10
//
// The file is named after the url and the UTC time the recording started.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-rod/recorder/lib/reaper"
)

func main() {
	reaper.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		reaper.Exit(1)
	}
	reaper.Exit(0)
}
