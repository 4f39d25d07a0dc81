package recorder

import (
	"context"
	"time"

	"github.com/go-rod/recorder/lib/encoder"
	"github.com/sirupsen/logrus"
	"github.com/ysmood/goob"
)

// sink consumes the frames, encoder.Encoder is the real one
type sink interface {
	Start() error
	Write(encoder.Frame) error
	Close(end time.Time) error
	Abort()
	Frames() int
	Full() bool
}

// endOfStream is published after the last frame of a capture
type endOfStream struct{}

// capture pumps the screencast of a page into a sink through the events hub
type capture struct {
	page   Page
	opts   ScreencastOptions
	events *goob.Observable
	sink   sink
	log    logrus.FieldLogger

	cancel   func()
	done     chan error
	received int
}

func newCapture(page Page, opts ScreencastOptions, events *goob.Observable, s sink, log logrus.FieldLogger) *capture {
	return &capture{
		page:   page,
		opts:   opts,
		events: events,
		sink:   s,
		log:    log,
	}
}

func (c *capture) start() error {
	err := c.sink.Start()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan error, 1)

	go c.consume(c.events.Subscribe(ctx))

	err = c.page.StartScreencast(c.opts, func(f encoder.Frame) {
		c.events.Publish(f)
	})
	if err != nil {
		cancel()
		<-c.done
		c.sink.Abort()
		return err
	}

	return nil
}

func (c *capture) consume(events <-chan goob.Event) {
	var err error
	full := false

	for e := range events {
		switch v := e.(type) {
		case endOfStream:
			c.done <- err
			return

		case encoder.Frame:
			c.received++
			if err != nil {
				continue
			}

			err = c.sink.Write(v)

			if !full && c.sink.Full() {
				full = true
				c.log.Warn("max duration reached, the rest of the frames are dropped")
			}
		}
	}

	c.done <- err
}

// stop the screencast, wait for the pending frames to be encoded, then finalize the file
func (c *capture) stop() error {
	end := time.Now()

	err := c.page.StopScreencast()
	if err != nil {
		c.log.WithError(err).Warn("failed to stop the screencast")
	}

	// the screencast handler has returned, so the marker is the last event of the capture
	c.events.Publish(endOfStream{})
	err = <-c.done
	c.cancel()

	if err != nil {
		c.sink.Abort()
		return err
	}

	// a static page may not produce any frame in a short recording
	if c.received == 0 {
		c.log.Debug("no frame received, using a screenshot")

		data, err := c.page.Screenshot(c.opts.Quality)
		if err != nil {
			c.log.WithError(err).Warn("failed to take a screenshot")
		} else {
			err = c.sink.Write(encoder.Frame{Data: data, Timestamp: end})
			if err != nil {
				c.sink.Abort()
				return err
			}
		}
	}

	return c.sink.Close(end)
}
