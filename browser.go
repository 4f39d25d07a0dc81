package recorder

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// BrowserOptions of the rod driver
type BrowserOptions struct {
	// Bin of the browser, if empty the launcher finds or downloads one
	Bin string

	// Show the browser window instead of running headless
	Show bool

	// NoSandbox is usually required to run as root in docker
	NoSandbox bool
}

// RodDriver launches a local Chromium and controls it with rod
type RodDriver struct {
	opts BrowserOptions
}

// NewRodDriver instance
func NewRodDriver(opts BrowserOptions) *RodDriver {
	return &RodDriver{opts: opts}
}

// Launch a new browser process with a temporary user data dir
func (d *RodDriver) Launch(ctx context.Context) (Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(!d.opts.Show).
		NoSandbox(d.opts.NoSandbox)

	if d.opts.Bin != "" {
		l = l.Bin(d.opts.Bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	b := rod.New().ControlURL(u)
	err = b.Connect()
	if err != nil {
		l.Kill()
		l.Cleanup()
		return nil, err
	}

	return &rodBrowser{launcher: l, browser: b}, nil
}

type rodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	// only the creation is bound to ctx, the page has to outlive it to finalize the video
	return &rodPage{browser: b.browser, page: p.Context(context.Background())}, nil
}

// Close the browser, kill it if it doesn't respond, then remove the user data dir
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	if err != nil {
		b.launcher.Kill()
	}
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	browser *rod.Browser
	page    *rod.Page
	cast    *screencast
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	err := page.Navigate(url)
	if err != nil {
		return err
	}
	return page.WaitLoad()
}

func (p *rodPage) SetViewport(width, height int) error {
	return setViewport(p.page, width, height)
}

func (p *rodPage) Screenshot(quality int) ([]byte, error) {
	return p.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(quality),
	})
}

func setViewport(p *rod.Page, width, height int) error {
	return p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}
