package recorder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/go-rod/recorder/lib/encoder"
	"gopkg.in/yaml.v3"
)

// Config of the recording. It's passed by value, a session never modifies it.
type Config struct {
	// FollowNewTab moves the recording to the tab opened by the recorded page
	FollowNewTab bool `yaml:"followNewTab"`

	// FPS of the output video
	FPS int `yaml:"fps"`

	// EncoderPath of the ffmpeg binary
	EncoderPath string `yaml:"encoderPath"`

	FrameWidth  int `yaml:"frameWidth"`
	FrameHeight int `yaml:"frameHeight"`

	// Quality is the constant rate factor of the encoder, lower is better
	Quality int `yaml:"quality"`

	Codec  string `yaml:"codec"`
	Preset string `yaml:"preset"`

	// Bitrate in kbit/s
	Bitrate     int    `yaml:"bitrate"`
	AspectRatio string `yaml:"aspectRatio"`

	// MaxDuration caps the recording no matter how long is requested
	MaxDuration time.Duration `yaml:"maxDuration"`

	// JPEGQuality of the frames sent by the browser, from 1 to 100
	JPEGQuality int `yaml:"jpegQuality"`

	// NavigationTimeout bounds the page load, zero means no limit
	NavigationTimeout time.Duration `yaml:"navigationTimeout"`
}

// DefaultConfig for a 720p h264 video
func DefaultConfig() Config {
	return Config{
		FollowNewTab:      true,
		FPS:               50,
		EncoderPath:       "ffmpeg",
		FrameWidth:        1280,
		FrameHeight:       720,
		Quality:           18,
		Codec:             "libx264",
		Preset:            "ultrafast",
		Bitrate:           1000,
		AspectRatio:       "16:9",
		MaxDuration:       30 * time.Minute,
		JPEGQuality:       90,
		NavigationTimeout: time.Minute,
	}
}

// LoadConfig reads a yaml file on top of DefaultConfig, unknown keys are rejected
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, newError(ErrInvalidConfig, path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(&cfg)
	if err != nil && err != io.EOF {
		return cfg, newError(ErrInvalidConfig, path, err)
	}

	return cfg, cfg.Validate()
}

var aspectRatioRegex = regexp.MustCompile(`^[1-9]\d*:[1-9]\d*$`)

// Validate the config
func (c Config) Validate() error {
	invalid := func(field string, format string, args ...interface{}) error {
		return newError(ErrInvalidConfig, field, fmt.Errorf(format, args...))
	}

	switch {
	case c.FPS <= 0:
		return invalid("fps", "must be positive, got %d", c.FPS)
	case c.EncoderPath == "":
		return invalid("encoderPath", "must not be empty")
	case c.FrameWidth <= 0 || c.FrameWidth%2 != 0:
		return invalid("frameWidth", "must be a positive even number, got %d", c.FrameWidth)
	case c.FrameHeight <= 0 || c.FrameHeight%2 != 0:
		return invalid("frameHeight", "must be a positive even number, got %d", c.FrameHeight)
	case c.Quality < 0 || c.Quality > 63:
		return invalid("quality", "must be between 0 and 63, got %d", c.Quality)
	case c.Codec == "":
		return invalid("codec", "must not be empty")
	case c.Bitrate < 0:
		return invalid("bitrate", "must not be negative, got %d", c.Bitrate)
	case c.AspectRatio != "" && !aspectRatioRegex.MatchString(c.AspectRatio):
		return invalid("aspectRatio", "must look like 16:9, got %q", c.AspectRatio)
	case c.MaxDuration <= 0:
		return invalid("maxDuration", "must be positive, got %s", c.MaxDuration)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return invalid("jpegQuality", "must be between 1 and 100, got %d", c.JPEGQuality)
	case c.NavigationTimeout < 0:
		return invalid("navigationTimeout", "must not be negative, got %s", c.NavigationTimeout)
	}
	return nil
}

func (c Config) encoderOptions(log io.Writer) encoder.Options {
	return encoder.Options{
		Path:        c.EncoderPath,
		FPS:         c.FPS,
		Width:       c.FrameWidth,
		Height:      c.FrameHeight,
		Quality:     c.Quality,
		Codec:       c.Codec,
		Preset:      c.Preset,
		Bitrate:     c.Bitrate,
		AspectRatio: c.AspectRatio,
		MaxDuration: c.MaxDuration,
		Log:         log,
	}
}

func (c Config) screencastOptions() ScreencastOptions {
	return ScreencastOptions{
		Quality:      c.JPEGQuality,
		MaxWidth:     c.FrameWidth,
		MaxHeight:    c.FrameHeight,
		FollowNewTab: c.FollowNewTab,
	}
}
