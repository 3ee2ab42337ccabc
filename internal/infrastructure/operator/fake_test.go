package operator

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

type fakeDesktop struct {
	mu      sync.Mutex
	display Display
	capture image.Rectangle
	events  []string
	failOn  string
	closed  bool
}

func (d *fakeDesktop) record(format string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ev := fmt.Sprintf(format, args...)
	d.events = append(d.events, ev)
	if d.failOn != "" && ev == d.failOn {
		return fmt.Errorf("%s failed", ev)
	}
	return nil
}

func (d *fakeDesktop) PrimaryDisplay(context.Context) (Display, error) {
	return d.display, nil
}

func (d *fakeDesktop) Capture(context.Context) (image.Image, error) {
	return image.NewRGBA(d.capture), nil
}

func (d *fakeDesktop) MouseMove(_ context.Context, x, y float64) error {
	return d.record("move %g,%g", x, y)
}

func (d *fakeDesktop) MouseDown(_ context.Context, b MouseButton) error {
	return d.record("down %s", b)
}

func (d *fakeDesktop) MouseUp(_ context.Context, b MouseButton) error {
	return d.record("up %s", b)
}

func (d *fakeDesktop) Click(_ context.Context, b MouseButton, count int) error {
	return d.record("click %s x%d", b, count)
}

func (d *fakeDesktop) Scroll(_ context.Context, dx, dy float64) error {
	return d.record("scroll %g,%g", dx, dy)
}

func (d *fakeDesktop) TypeText(_ context.Context, text string) error {
	return d.record("type %q", text)
}

func (d *fakeDesktop) PressKeys(_ context.Context, keys []string) error {
	return d.record("keys %v", keys)
}

func (d *fakeDesktop) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDesktop) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

type fakeOperator struct {
	mu          sync.Mutex
	shot        *entity.Screenshot
	result      *entity.ExecutionResult
	err         error
	screenshots int
	executed    []output.ExecuteParams
}

func (f *fakeOperator) Screenshot(context.Context) (*entity.Screenshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshots++
	return f.shot, f.err
}

func (f *fakeOperator) Execute(_ context.Context, p output.ExecuteParams) (*entity.ExecutionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, p)
	return f.result, f.err
}

type fakeRegistry struct {
	devices map[string]entity.Device
}

func (r fakeRegistry) Available() bool { return len(r.devices) > 0 }

func (r fakeRegistry) Devices() []entity.Device {
	out := make([]entity.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

func (r fakeRegistry) Lookup(id string) (entity.Device, bool) {
	d, ok := r.devices[id]
	return d, ok
}
