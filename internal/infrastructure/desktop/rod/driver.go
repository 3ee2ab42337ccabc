// Package rod implements the local desktop driver on top of a Chrome page
// controlled over CDP. The page viewport is the primary display and
// window.devicePixelRatio its scale factor.
package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"gui-agent/internal/infrastructure/operator"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ operator.Desktop = (*Driver)(nil)

const displayID = "viewport"

type Config struct {
	URL         string
	Headless    bool
	Width       int
	Height      int
	ScaleFactor float64
	SlowMotion  time.Duration
	Timeout     time.Duration
	NoSandbox   bool
}

func DefaultConfig() Config {
	return Config{
		URL:         "about:blank",
		Width:       1280,
		Height:      800,
		ScaleFactor: 1,
		Timeout:     10 * time.Second,
	}
}

type Driver struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
}

func New(ctx context.Context, cfg Config) (*Driver, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: cfg.URL})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	d := &Driver{browser: browser, launcher: l, page: page, timeout: cfg.Timeout}

	if cfg.Width > 0 && cfg.Height > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.Width,
			Height:            cfg.Height,
			DeviceScaleFactor: cfg.ScaleFactor,
		})
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	if err := page.WaitLoad(); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to load %s: %w", cfg.URL, err)
	}
	return d, nil
}

// withTimeout returns the page bound to ctx and the driver timeout. Mouse state
// lives on the shared page, so mouse calls go through d.page.Mouse.
func (d *Driver) withTimeout(ctx context.Context) (*rod.Page, context.CancelFunc) {
	if d.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		return d.page.Context(ctx), cancel
	}
	return d.page.Context(ctx), func() {}
}

func (d *Driver) PrimaryDisplay(ctx context.Context) (operator.Display, error) {
	page, cancel := d.withTimeout(ctx)
	defer cancel()

	res, err := page.Eval(`() => ({
		width: window.innerWidth,
		height: window.innerHeight,
		scale: window.devicePixelRatio
	})`)
	if err != nil {
		return operator.Display{}, fmt.Errorf("read viewport: %w", err)
	}

	return operator.Display{
		ID:          displayID,
		Width:       res.Value.Get("width").Int(),
		Height:      res.Value.Get("height").Int(),
		ScaleFactor: res.Value.Get("scale").Num(),
	}, nil
}

func (d *Driver) Capture(ctx context.Context) (image.Image, error) {
	page, cancel := d.withTimeout(ctx)
	defer cancel()

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(90),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	return img, nil
}

func (d *Driver) MouseMove(_ context.Context, x, y float64) error {
	return d.page.Mouse.MoveTo(proto.NewPoint(x, y))
}

func (d *Driver) MouseDown(_ context.Context, button operator.MouseButton) error {
	return d.page.Mouse.Down(mouseButton(button), 1)
}

func (d *Driver) MouseUp(_ context.Context, button operator.MouseButton) error {
	return d.page.Mouse.Up(mouseButton(button), 1)
}

func (d *Driver) Click(_ context.Context, button operator.MouseButton, count int) error {
	return d.page.Mouse.Click(mouseButton(button), count)
}

func (d *Driver) Scroll(_ context.Context, dx, dy float64) error {
	return d.page.Mouse.Scroll(dx, dy, 5)
}

func (d *Driver) TypeText(ctx context.Context, text string) error {
	page, cancel := d.withTimeout(ctx)
	defer cancel()
	return page.InsertText(text)
}

func (d *Driver) PressKeys(ctx context.Context, names []string) error {
	keys, err := resolveKeys(names)
	if err != nil {
		return err
	}

	modifiers, last := keys[:len(keys)-1], keys[len(keys)-1]
	page, cancel := d.withTimeout(ctx)
	defer cancel()
	return page.KeyActions().Press(modifiers...).Type(last).Do()
}

func (d *Driver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}
	return err
}

func mouseButton(b operator.MouseButton) proto.InputMouseButton {
	if b == operator.ButtonRight {
		return proto.InputMouseButtonRight
	}
	return proto.InputMouseButtonLeft
}
