package recorder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/recorder/lib/encoder"
	"github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// to prevent false positive of goleak
	http.DefaultClient = &http.Client{
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}

	goleak.VerifyTestMain(
		m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	)
}

var errTest = errors.New("test error")

// calls records the order of the calls made by a session
type calls struct {
	lock sync.Mutex
	list []string
}

func (c *calls) add(format string, args ...interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.list = append(c.list, fmt.Sprintf(format, args...))
}

func (c *calls) get() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string{}, c.list...)
}

type fakeDriver struct {
	calls     *calls
	launchErr error
	browser   *fakeBrowser
}

func (d *fakeDriver) Launch(ctx context.Context) (Browser, error) {
	d.calls.add("launch")
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	return d.browser, nil
}

type fakeBrowser struct {
	calls    *calls
	pageErr  error
	closeErr error
	page     *fakePage
	closed   int
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	b.calls.add("new-page")
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.calls.add("close")
	b.closed++
	return b.closeErr
}

type fakePage struct {
	calls *calls

	navErr      error
	viewportErr error
	startErr    error
	stopErr     error
	shotErr     error

	// frames sent right after the screencast starts
	frames      []encoder.Frame
	navDeadline bool
	castOpts    ScreencastOptions
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	_, p.navDeadline = ctx.Deadline()
	p.calls.add("navigate %s", url)
	return p.navErr
}

func (p *fakePage) SetViewport(width, height int) error {
	p.calls.add("viewport %dx%d", width, height)
	return p.viewportErr
}

func (p *fakePage) StartScreencast(opts ScreencastOptions, handler func(encoder.Frame)) error {
	p.calls.add("start-screencast")
	p.castOpts = opts
	if p.startErr != nil {
		return p.startErr
	}
	for _, f := range p.frames {
		handler(f)
	}
	return nil
}

func (p *fakePage) StopScreencast() error {
	p.calls.add("stop-screencast")
	return p.stopErr
}

func (p *fakePage) Screenshot(quality int) ([]byte, error) {
	p.calls.add("screenshot %d", quality)
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return []byte("screenshot"), nil
}

type fakeSink struct {
	calls *calls

	startErr error
	writeErr error
	closeErr error

	lock    sync.Mutex
	frames  []encoder.Frame
	aborted bool
	closed  bool
}

func (s *fakeSink) Start() error {
	s.calls.add("encoder-start")
	return s.startErr
}

func (s *fakeSink) Write(f encoder.Frame) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.frames = append(s.frames, f)
	return s.writeErr
}

func (s *fakeSink) Close(end time.Time) error {
	s.calls.add("encoder-close")
	s.closed = true
	return s.closeErr
}

func (s *fakeSink) Abort() {
	s.calls.add("encoder-abort")
	s.aborted = true
}

func (s *fakeSink) Frames() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.frames)
}

func (s *fakeSink) Full() bool {
	return false
}

func (s *fakeSink) data() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := []string{}
	for _, f := range s.frames {
		list = append(list, string(f.Data))
	}
	return list
}

// fixture wires a session to fakes that succeed by default
type fixture struct {
	calls   *calls
	driver  *fakeDriver
	browser *fakeBrowser
	page    *fakePage
	sink    *fakeSink
	slept   []time.Duration
	wake    bool
	session *Session
	logs    *test.Hook
}

func newFixture(cfg Config) *fixture {
	c := &calls{}
	page := &fakePage{calls: c}
	browser := &fakeBrowser{calls: c, page: page}

	f := &fixture{
		calls:   c,
		page:    page,
		browser: browser,
		driver:  &fakeDriver{calls: c, browser: browser},
		sink:    &fakeSink{calls: c},
		wake:    true,
	}

	logger, hook := test.NewNullLogger()
	f.logs = hook

	f.session = New(cfg).Driver(f.driver).Logger(logger)
	f.session.newSink = func(encoder.Options, string) sink { return f.sink }
	f.session.sleep = func(_ context.Context, d time.Duration) bool {
		f.slept = append(f.slept, d)
		return f.wake
	}

	return f
}
