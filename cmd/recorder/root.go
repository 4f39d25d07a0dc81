package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-rod/recorder"
	"github.com/go-rod/recorder/lib/defaults"
	"github.com/go-rod/recorder/lib/monitor"
	"github.com/go-rod/recorder/lib/probe"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ysmood/goob"
)

type options struct {
	config  string
	outDir  string
	verbose bool
	json    bool
	show    bool
	bin     string
	encoder string
	monitor string
	probe   bool
}

// driver is replaced in tests
var driver = func(o *options) recorder.Driver {
	return recorder.NewRodDriver(recorder.BrowserOptions{
		Bin:       o.bin,
		Show:      o.show,
		NoSandbox: defaults.NoSandbox,
	})
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "recorder <url> <durationSeconds>",
		Short: "Record a web page to an mp4 video",
		Example: "  recorder https://example.com 10\n" +
			"  recorder -o videos --config hd.yml https://example.com 60",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(o, stderr)

			err := run(cmd.Context(), o, args, stdout, log)
			if err != nil {
				log.WithError(err).Error("recording failed")
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "yaml config file")
	f.StringVarP(&o.outDir, "output-dir", "o", defaults.Dir, "directory to save the video")
	f.BoolVarP(&o.verbose, "verbose", "v", defaults.Debug, "enable debug logs, including the encoder output")
	f.BoolVar(&o.json, "json", false, "log in json and print a json summary to stdout")
	f.BoolVar(&o.show, "show", defaults.Show, "show the browser window")
	f.StringVar(&o.bin, "bin", defaults.Bin, "browser binary, downloaded if not found")
	f.StringVar(&o.encoder, "encoder", defaults.Encoder, "ffmpeg binary, overrides encoderPath of the config")
	f.StringVar(&o.monitor, "monitor", defaults.Monitor, "address to serve a live preview on, such as :9273")
	f.BoolVar(&o.probe, "probe", defaults.Probe, "check the video with ffprobe when done")

	return cmd
}

func newLogger(o *options, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if o.json {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if o.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func loadConfig(o *options) (recorder.Config, error) {
	cfg := recorder.DefaultConfig()

	if o.config != "" {
		var err error
		cfg, err = recorder.LoadConfig(o.config)
		if err != nil {
			return cfg, err
		}
	}

	if o.encoder != "" {
		cfg.EncoderPath = o.encoder
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, o *options, args []string, stdout io.Writer, log *logrus.Logger) error {
	params, err := recorder.Resolve(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	output := filepath.Join(o.outDir, recorder.Filename(params.URL, time.Now()))

	hubCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := goob.New(hubCtx)

	if o.monitor != "" {
		m := monitor.New(events)
		u, err := m.Listen(o.monitor)
		if err != nil {
			return fmt.Errorf("failed to start the monitor: %w", err)
		}
		defer func() { _ = m.Close() }()

		log.WithField("url", u).Info("serving live preview")
	}

	err = recorder.New(cfg).
		Driver(driver(o)).
		Logger(log).
		Events(events).
		Run(ctx, params, output)
	if err != nil {
		return err
	}

	var res *probe.Result
	if o.probe {
		res = check(ctx, cfg, params, output, log)
	}

	if o.json {
		s, err := summary(params, output, res)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, s)
	} else {
		fmt.Fprintln(stdout, output)
	}

	return nil
}

// check the video with ffprobe, a failed check is only logged
func check(ctx context.Context, cfg recorder.Config, params recorder.Params, output string, log logrus.FieldLogger) *probe.Result {
	res, err := probe.Run(ctx, probe.Bin(cfg.EncoderPath), output)
	if err != nil {
		log.WithError(err).Warn("failed to probe the video")
		return nil
	}

	l := log.WithFields(logrus.Fields{
		"duration": res.Duration,
		"codec":    res.Codec,
		"size":     fmt.Sprintf("%dx%d", res.Width, res.Height),
	})

	expected := params.Duration()
	if expected > cfg.MaxDuration {
		expected = cfg.MaxDuration
	}

	if diff := res.Duration - expected; diff > time.Second || diff < -time.Second {
		l.WithField("expected", expected).Warn("video duration doesn't match")
	} else {
		l.Info("video probed")
	}

	return res
}
