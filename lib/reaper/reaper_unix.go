//go:build !windows

// Package reaper cleans up zombie processes when the recorder runs as the init
// process of a container, where nobody else would wait for the orphaned
// children of the browser.
//
// The reaper waits for any child, so it would also steal the exit status of
// the encoder. PID 1 therefore only reaps: it runs the same program again as
// its child, which does the real work and reports its exit code through a pipe.
package reaper

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/ramr/go-reaper"
)

// childEnv marks the process started by the reaper
const childEnv = "recorder_reaper_child"

// statusFD is the write end of the pipe in the child
const statusFD = 3

var once sync.Once

func start() {
	once.Do(func() {
		reaper.Start(reaper.Config{Pid: -1, DisablePid1Check: true})
	})
}

// Run makes PID 1 a reaper of the current program started again as its
// child, then exits with the code of the child. Elsewhere it returns right away.
func Run() {
	if Supervised() {
		// the browser and the encoder must not hold the status pipe open
		syscall.CloseOnExec(statusFD)
		return
	}

	if os.Getpid() != 1 {
		return
	}

	bin, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[reaper]", err)
		os.Exit(1)
	}

	start()

	code, err := supervise(bin, os.Args[1:], nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "[reaper]", err)
	}
	os.Exit(code)
}

// Supervised returns true if the process was started by the reaper
func Supervised() bool {
	return os.Getenv(childEnv) != ""
}

// Exit the process, the code is reported to the reaper first if supervised
func Exit(code int) {
	if Supervised() {
		f := os.NewFile(statusFD, "reaper-status")
		_, _ = f.WriteString(strconv.Itoa(code))
		_ = f.Close()
	}
	os.Exit(code)
}

// supervise runs bin as a child with the status pipe, forwards the termination
// signals to it, and returns the code it reports
func supervise(bin string, args, env []string) (int, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return 1, err
	}
	defer func() { _ = r.Close() }()

	cmd := exec.Command(bin, args...)
	cmd.Env = append(append(os.Environ(), env...), childEnv+"=1")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{w}

	err = cmd.Start()
	_ = w.Close()
	if err != nil {
		return 1, err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigs)
		close(done)
	}()

	go func() {
		for {
			select {
			case s := <-sigs:
				_ = cmd.Process.Signal(s)
			case <-done:
				return
			}
		}
	}()

	// the child is never waited here, its exit status belongs to the reaper
	return status(r), nil
}

// status reads the code reported by the child, a child that exits without
// reporting one has failed
func status(r io.Reader) int {
	b, err := io.ReadAll(r)
	if err != nil {
		return 1
	}

	code, err := strconv.Atoi(string(b))
	if err != nil {
		return 1
	}
	return code
}
