// Package main A helper to run go test on CI with the right environment variables.
//
//	go run ./lib/utils/ci-test -race -coverprofile=coverage.out ./...
package main

import (
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// testEnvs for the recorder running as root in a container
var testEnvs = map[string]string{
	"recorder": "no-sandbox,debug",
}

func main() {
	for k, v := range testEnvs {
		err := os.Setenv(k, v)
		if err != nil {
			logrus.WithError(err).Fatal("failed to set env")
		}
	}

	cmd := exec.Command("go", append([]string{"test"}, os.Args[1:]...)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logrus.WithField("args", cmd.Args).Info("running")

	err := cmd.Run()
	if err != nil {
		logrus.WithError(err).Fatal("tests failed")
	}
}
