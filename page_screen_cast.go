package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/recorder/lib/encoder"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// screencast of a page, it may move to another tab when FollowNewTab is enabled
type screencast struct {
	browser *rod.Browser
	opts    ScreencastOptions
	handler func(encoder.Frame)

	lock     sync.Mutex
	page     *rod.Page
	stopPage func() error
	stopTabs func()
	stopped  bool
}

func (p *rodPage) StartScreencast(opts ScreencastOptions, handler func(encoder.Frame)) error {
	s := &screencast{
		browser: p.browser,
		opts:    opts,
		handler: handler,
	}

	err := s.attach(p.page)
	if err != nil {
		return err
	}

	if opts.FollowNewTab {
		err = s.followTabs()
		if err != nil {
			_ = s.stopPage()
			return err
		}
	}

	p.cast = s
	return nil
}

func (p *rodPage) StopScreencast() error {
	s := p.cast
	if s == nil {
		return nil
	}
	p.cast = nil

	if s.stopTabs != nil {
		s.stopTabs()
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.stopped = true
	return s.stopPage()
}

// attach the screencast to page, the frame listener is registered before the
// screencast starts so that the first frame is not missed
func (s *screencast) attach(page *rod.Page) error {
	ctx, cancel := context.WithCancel(context.Background())

	wait := page.Context(ctx).EachEvent(func(e *proto.PageScreencastFrame) {
		_ = proto.PageScreencastFrameAck{
			SessionID: e.SessionID,
		}.Call(page)

		s.handler(encoder.Frame{
			Data:      e.Data,
			Timestamp: frameTime(e),
		})
	})

	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()

	err := proto.PageStartScreencast{
		Format:        proto.PageStartScreencastFormatJpeg,
		Quality:       gson.Int(s.opts.Quality),
		MaxWidth:      gson.Int(s.opts.MaxWidth),
		MaxHeight:     gson.Int(s.opts.MaxHeight),
		EveryNthFrame: gson.Int(1),
	}.Call(page)
	if err != nil {
		cancel()
		<-done
		return err
	}

	s.page = page
	s.stopPage = func() error {
		err := proto.PageStopScreencast{}.Call(page)
		cancel()
		<-done
		return err
	}

	return nil
}

// followTabs moves the screencast to the page tabs opened by the current one
func (s *screencast) followTabs() error {
	err := proto.TargetSetDiscoverTargets{Discover: true}.Call(s.browser)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())

	wait := s.browser.Context(ctx).EachEvent(func(e *proto.TargetTargetCreated) {
		info := e.TargetInfo
		if info.Type != "page" || info.OpenerID != s.current().TargetID {
			return
		}
		s.switchTo(info.TargetID)
	})

	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()

	s.stopTabs = func() {
		cancel()
		<-done
	}

	return nil
}

func (s *screencast) current() *rod.Page {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.page
}

func (s *screencast) switchTo(id proto.TargetTargetID) {
	next, err := s.browser.PageFromTarget(id)
	if err != nil {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.stopped {
		return
	}

	prev := s.page
	_ = s.stopPage()
	_ = setViewport(next, s.opts.MaxWidth, s.opts.MaxHeight)

	if s.attach(next) != nil {
		// keep recording the old tab rather than nothing
		_ = s.attach(prev)
	}
}

// frameTime returns when the frame was swapped by the compositor
func frameTime(e *proto.PageScreencastFrame) time.Time {
	if e.Metadata == nil {
		return time.Now()
	}

	t := e.Metadata.Timestamp.Time()
	if t.Unix() <= 0 {
		return time.Now()
	}
	return t
}
