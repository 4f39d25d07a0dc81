// Package recorder records a web page to a video file.
//
// A Session launches a browser through a Driver, loads the url, then streams
// the screencast of the page into ffmpeg for the requested duration.
// The browser is released on every exit path once it's launched.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/recorder/lib/encoder"
	"github.com/go-rod/recorder/lib/utils"
	"github.com/sirupsen/logrus"
	"github.com/ysmood/goob"
)

// Driver launches browsers
type Driver interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a launched browser instance
type Browser interface {
	NewPage(ctx context.Context) (Page, error)

	// Close the browser and release the process and its files
	Close() error
}

// Page is a tab of the browser
type Page interface {
	// Navigate to the url and wait for it to load
	Navigate(ctx context.Context, url string) error

	SetViewport(width, height int) error

	// StartScreencast calls handler for every frame until StopScreencast returns
	StartScreencast(opts ScreencastOptions, handler func(encoder.Frame)) error
	StopScreencast() error

	// Screenshot in JPEG format
	Screenshot(quality int) ([]byte, error)
}

// ScreencastOptions of Page.StartScreencast
type ScreencastOptions struct {
	// Quality of the JPEG frames, from 1 to 100
	Quality   int
	MaxWidth  int
	MaxHeight int

	// FollowNewTab moves the screencast to the tabs opened by the page
	FollowNewTab bool
}

// ErrSessionUsed is returned when Run is called more than once
var ErrSessionUsed = errors.New("[recorder] a session can only run once")

// Session records a single video
type Session struct {
	cfg    Config
	driver Driver
	logger logrus.FieldLogger
	events *goob.Observable

	newSink func(encoder.Options, string) sink
	sleep   func(context.Context, time.Duration) bool

	lock  sync.Mutex
	state State
}

// New session with the default rod driver
func New(cfg Config) *Session {
	return &Session{
		cfg:    cfg,
		driver: NewRodDriver(BrowserOptions{}),
		logger: logrus.StandardLogger(),
		newSink: func(opts encoder.Options, output string) sink {
			return encoder.New(opts, output)
		},
		sleep: utils.Sleep,
	}
}

// Driver to launch the browser
func (s *Session) Driver(d Driver) *Session {
	s.driver = d
	return s
}

// Logger of the session
func (s *Session) Logger(l logrus.FieldLogger) *Session {
	s.logger = l
	return s
}

// Events sets the hub where the captured encoder.Frame values are published,
// other consumers such as the monitor can subscribe to it.
// The hub must stay open until Run returns.
func (s *Session) Events(ob *goob.Observable) *Session {
	s.events = ob
	return s
}

// State of the session
func (s *Session) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

func (s *Session) advance(to State, log logrus.FieldLogger) {
	s.lock.Lock()
	if !s.state.next(to) {
		s.lock.Unlock()
		panic(fmt.Sprintf("[recorder] invalid state transition: %s -> %s", s.state, to))
	}
	s.state = to
	s.lock.Unlock()

	log.WithField("state", to).Debug("state changed")
}

// Run the recording and save it to output. If ctx is cancelled while recording,
// the recording stops early and the video is still finalized.
func (s *Session) Run(ctx context.Context, params Params, output string) (err error) {
	s.lock.Lock()
	if s.state != StateUnstarted {
		s.lock.Unlock()
		return ErrSessionUsed
	}
	s.lock.Unlock()

	err = s.cfg.Validate()
	if err != nil {
		return err
	}

	events := s.events
	if events == nil {
		hubCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events = goob.New(hubCtx)
	}

	log := s.logger.WithFields(logrus.Fields{"url": params.URL, "output": output})

	log.Debug("launching browser")
	browser, err := s.driver.Launch(ctx)
	if err != nil {
		return newError(ErrBrowserLaunch, nil, err)
	}
	s.advance(StateBrowserOpen, log)

	defer func() {
		closeErr := browser.Close()

		s.lock.Lock()
		s.state = StateClosed
		s.lock.Unlock()
		log.WithField("state", StateClosed).Debug("state changed")

		if closeErr == nil {
			return
		}
		if err == nil {
			err = newError(ErrBrowserClose, nil, closeErr)
		} else {
			log.WithError(closeErr).Warn("failed to close the browser")
		}
	}()

	page, err := browser.NewPage(ctx)
	if err != nil {
		return newError(ErrPageCreation, nil, err)
	}

	encLog := utils.LineWriter(func(line string) {
		log.WithField("from", "encoder").Debug(line)
	})
	c := newCapture(page, s.cfg.screencastOptions(), events, s.newSink(s.cfg.encoderOptions(encLog), output), log)

	err = s.navigate(ctx, page, params.URL)
	if err != nil {
		return newError(ErrNavigation, params.URL, err)
	}
	s.advance(StatePageNavigated, log)

	// the viewport is set after the navigation, in case the page resets it
	err = page.SetViewport(s.cfg.FrameWidth, s.cfg.FrameHeight)
	if err != nil {
		return newError(ErrViewport, nil, err)
	}

	err = c.start()
	if err != nil {
		return newError(ErrCaptureStart, output, err)
	}
	s.advance(StateCapturing, log)

	wait := params.Duration()
	if wait > s.cfg.MaxDuration {
		log.WithField("maxDuration", s.cfg.MaxDuration).Warn("duration exceeds the limit, it will be capped")
		wait = s.cfg.MaxDuration
	}

	log.WithField("duration", wait).Info("recording")
	if !s.sleep(ctx, wait) {
		log.Warn("interrupted, stopping the recording early")
	}

	err = c.stop()
	if err != nil {
		return newError(ErrCaptureStop, output, err)
	}
	s.advance(StateStopped, log)

	log.WithField("frames", c.sink.Frames()).Info("video saved")

	return nil
}

func (s *Session) navigate(ctx context.Context, page Page, url string) error {
	if s.cfg.NavigationTimeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.cfg.NavigationTimeout)
		defer cancel()
	}
	return page.Navigate(ctx, url)
}
