// Package encoder pipes JPEG frames into an ffmpeg process to produce a video
// file at a constant frame rate.
package encoder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// ErrNotStarted is returned when frames are written before Start
var ErrNotStarted = errors.New("[encoder] not started")

// ErrStarted is returned when Start is called twice
var ErrStarted = errors.New("[encoder] already started")

// Options of the encoder process
type Options struct {
	// Path to the ffmpeg binary, looked up in PATH if it has no separator
	Path string

	FPS    int
	Width  int
	Height int

	// Quality is the constant rate factor
	Quality int
	Codec   string
	Preset  string

	// Bitrate in kbit/s, zero to let the codec decide
	Bitrate     int
	AspectRatio string

	// MaxDuration caps the length of the output video, zero means no cap
	MaxDuration time.Duration

	// Log receives the stdout and stderr of the process
	Log io.Writer
}

// Encoder of a single output file
type Encoder struct {
	opts   Options
	output string

	cmd   *exec.Cmd
	stdin io.WriteCloser
	pacer pacer

	closed bool
}

// New encoder, it does nothing until Start is called
func New(opts Options, output string) *Encoder {
	limit := 0
	if opts.MaxDuration > 0 {
		limit = int(opts.MaxDuration.Seconds() * float64(opts.FPS))
	}

	return &Encoder{
		opts:   opts,
		output: output,
		pacer:  pacer{fps: opts.FPS, limit: limit},
	}
}

// Args of the ffmpeg command line
func (e *Encoder) Args() []string {
	o := e.opts
	fps := strconv.Itoa(o.FPS)

	args := []string{
		"-y",
		"-f", "image2pipe",
		"-framerate", fps,
		"-i", "pipe:0",
		"-an",
		"-c:v", o.Codec,
	}

	if o.Preset != "" {
		args = append(args, "-preset", o.Preset)
	}

	args = append(args, "-crf", strconv.Itoa(o.Quality))

	if o.Bitrate > 0 {
		args = append(args, "-b:v", strconv.Itoa(o.Bitrate)+"k")
	}

	args = append(args, "-vf", fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,format=yuv420p",
		o.Width, o.Height, o.Width, o.Height,
	))

	if o.AspectRatio != "" {
		args = append(args, "-aspect", o.AspectRatio)
	}

	return append(args,
		"-r", fps,
		"-movflags", "+faststart",
		e.output,
	)
}

// Start the ffmpeg process
func (e *Encoder) Start() error {
	if e.cmd != nil {
		return ErrStarted
	}

	cmd := exec.Command(e.opts.Path, e.Args()...)
	osSetupCmd(cmd)
	cmd.Stdout = e.opts.Log
	cmd.Stderr = e.opts.Log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("[encoder] failed to start %s: %w", e.opts.Path, err)
	}

	e.cmd = cmd
	e.stdin = stdin
	return nil
}

// Write a frame. The previous frame is written as many times as needed to
// cover the time until this one. Frames older than the previous frame are dropped.
func (e *Encoder) Write(f Frame) error {
	if e.stdin == nil {
		return ErrNotStarted
	}

	prev, n := e.pacer.next(f.Timestamp)
	if !e.pacer.push(f) {
		return nil
	}

	return e.writeN(prev, n)
}

// Frames returns how many frames have been sent to the encoder
func (e *Encoder) Frames() int {
	return e.pacer.written
}

// Full returns true when the MaxDuration cap is reached
func (e *Encoder) Full() bool {
	return e.pacer.full()
}

// Close fills the video with the last frame until the end time, then waits for
// the encoder to finalize the file. The last frame is written at least once.
func (e *Encoder) Close(end time.Time) error {
	if e.stdin == nil {
		return ErrNotStarted
	}
	if e.closed {
		return nil
	}
	e.closed = true

	prev, n := e.pacer.next(end)
	if prev != nil && n == 0 && e.pacer.written == 0 {
		n = 1
		e.pacer.written = 1
	}

	writeErr := e.writeN(prev, n)
	closeErr := e.stdin.Close()

	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("[encoder] %s exited: %w", e.opts.Path, err)
	}
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// Abort kills the encoder and removes the partial output
func (e *Encoder) Abort() {
	if e.cmd == nil || e.closed {
		return
	}
	e.closed = true

	_ = e.stdin.Close()
	_ = e.cmd.Process.Kill()
	_ = e.cmd.Wait()
	_ = os.Remove(e.output)
}

func (e *Encoder) writeN(f *Frame, n int) error {
	for i := 0; i < n; i++ {
		_, err := e.stdin.Write(f.Data)
		if err != nil {
			return fmt.Errorf("[encoder] failed to write frame: %w", err)
		}
	}
	return nil
}
