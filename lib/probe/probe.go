// Package probe reads the container and stream info of a video file with ffprobe.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
)

// Result of a probe
type Result struct {
	Format   string
	Duration time.Duration
	Codec    string
	Width    int
	Height   int
}

// Bin returns the ffprobe binary that ships next to the ffmpeg binary
func Bin(ffmpeg string) string {
	dir := filepath.Dir(ffmpeg)
	if dir == "." && filepath.Base(ffmpeg) == ffmpeg {
		return "ffprobe"
	}
	return filepath.Join(dir, "ffprobe")
}

// Run ffprobe against the file
func Run(ctx context.Context, bin, file string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		file,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("[probe] %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	return Parse(stdout.Bytes())
}

// Parse the json output of ffprobe
func Parse(data []byte) (*Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("[probe] invalid json output")
	}

	doc := gjson.ParseBytes(data)

	format := doc.Get("format")
	if !format.Exists() {
		return nil, errors.New("[probe] no format info")
	}

	res := &Result{
		Format:   format.Get("format_name").String(),
		Duration: seconds(format.Get("duration").Float()),
	}

	video := doc.Get(`streams.#(codec_type=="video")`)
	if !video.Exists() {
		return res, errors.New("[probe] no video stream")
	}

	res.Codec = video.Get("codec_name").String()
	res.Width = int(video.Get("width").Int())
	res.Height = int(video.Get("height").Int())

	return res, nil
}

// ffprobe prints durations with microsecond precision
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1e6)) * time.Microsecond
}
