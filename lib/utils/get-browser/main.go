// Package main prepares a machine for the end to end tests: it downloads the
// browser if none is found, then checks that ffmpeg and ffprobe are installed.
package main

import (
	"fmt"
	"os/exec"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/sirupsen/logrus"
)

func main() {
	bin, has := launcher.LookPath()
	if !has {
		logrus.Info("no browser found, downloading one")

		var err error
		bin, err = launcher.NewBrowser().Get()
		if err != nil {
			logrus.WithError(err).Fatal("failed to download the browser")
		}
	}

	for _, name := range []string{"ffmpeg", "ffprobe"} {
		p, err := exec.LookPath(name)
		if err != nil {
			logrus.WithError(err).Fatalf("%s is required by the recorder", name)
		}
		logrus.WithField("path", p).Info(name)
	}

	fmt.Println(bin)
}
