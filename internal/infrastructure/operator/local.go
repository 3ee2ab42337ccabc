package operator

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
)

var _ output.Operator = (*Local)(nil)

const scrollStep = 500

type LocalOptions struct {
	WaitDuration      time.Duration
	LongPressDuration time.Duration
}

// Local drives the machine's own display through a Desktop driver.
type Local struct {
	mu      sync.Mutex
	desktop Desktop
	opts    LocalOptions
	logger  output.LoggerPort
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewLocal(desktop Desktop, opts LocalOptions, logger output.LoggerPort) *Local {
	return &Local{
		desktop: desktop,
		opts:    opts,
		logger:  logger.WithField("target", entity.TargetLocal),
		sleep:   sleepCtx,
	}
}

// Screenshot captures the primary display at physical resolution
// (logical size times scale factor) and reports that scale factor.
func (l *Local) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	display, err := l.desktop.PrimaryDisplay(ctx)
	if err != nil {
		return nil, fmt.Errorf("primary display: %w", err)
	}
	scale := display.ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	width := int(math.Round(float64(display.Width) * scale))
	height := int(math.Round(float64(display.Height) * scale))

	img, err := l.desktop.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture display %s: %w", display.ID, err)
	}

	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		l.logger.Debug("resizing capture", "from_width", b.Dx(), "from_height", b.Dy(), "width", width, "height", height)
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}

	return &entity.Screenshot{
		Data:        buf.Bytes(),
		Format:      "png",
		Width:       width,
		Height:      height,
		ScaleFactor: scale,
		DisplayID:   display.ID,
	}, nil
}

func (l *Local) Execute(ctx context.Context, params output.ExecuteParams) (*entity.ExecutionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	action := params.Action
	l.logger.Debug("executing action", "action", action.Type, "inputs", action.Inputs)

	switch action.Type {
	case entity.ActionClick:
		return l.click(ctx, action, ButtonLeft, 1)
	case entity.ActionLeftDouble:
		return l.click(ctx, action, ButtonLeft, 2)
	case entity.ActionRightSingle:
		return l.click(ctx, action, ButtonRight, 1)

	case entity.ActionHover:
		if err := l.moveTo(ctx, action); err != nil {
			return nil, err
		}
		return entity.Succeeded(), nil

	case entity.ActionLongPress:
		if err := l.moveTo(ctx, action); err != nil {
			return nil, err
		}
		if err := l.desktop.MouseDown(ctx, ButtonLeft); err != nil {
			return nil, err
		}
		if err := l.sleep(ctx, l.opts.LongPressDuration); err != nil {
			_ = l.desktop.MouseUp(ctx, ButtonLeft)
			return nil, err
		}
		return done(l.desktop.MouseUp(ctx, ButtonLeft))

	case entity.ActionDrag:
		return l.drag(ctx, action)

	case entity.ActionScroll:
		return l.scroll(ctx, action)

	case entity.ActionTypeText:
		return l.typeText(ctx, action.Input(entity.InputContent))

	case entity.ActionHotkey, entity.ActionPress:
		keys := strings.Fields(strings.ReplaceAll(action.Input(entity.InputKey), "+", " "))
		if len(keys) == 0 {
			return entity.Failed("no key given"), nil
		}
		return done(l.desktop.PressKeys(ctx, keys))

	case entity.ActionWait:
		if err := l.sleep(ctx, l.opts.WaitDuration); err != nil {
			return nil, err
		}
		return entity.Succeeded(), nil

	case entity.ActionFinished, entity.ActionCallUser:
		return entity.Succeeded(), nil

	default:
		return entity.Failed(fmt.Sprintf("action %s is not supported on the local display", action.Type)), nil
	}
}

func (l *Local) Close() error {
	return l.desktop.Close()
}

func (l *Local) moveTo(ctx context.Context, action entity.Action) error {
	if action.StartCoords == nil {
		return fmt.Errorf("%s requires a target point", action.Type)
	}
	x, y := roundPoint(*action.StartCoords)
	return l.desktop.MouseMove(ctx, x, y)
}

func (l *Local) click(ctx context.Context, action entity.Action, button MouseButton, count int) (*entity.ExecutionResult, error) {
	if err := l.moveTo(ctx, action); err != nil {
		return nil, err
	}
	return done(l.desktop.Click(ctx, button, count))
}

func (l *Local) drag(ctx context.Context, action entity.Action) (*entity.ExecutionResult, error) {
	if action.EndCoords == nil {
		return nil, fmt.Errorf("%s requires an end point", action.Type)
	}
	if err := l.moveTo(ctx, action); err != nil {
		return nil, err
	}
	if err := l.desktop.MouseDown(ctx, ButtonLeft); err != nil {
		return nil, err
	}
	x, y := roundPoint(*action.EndCoords)
	if err := l.desktop.MouseMove(ctx, x, y); err != nil {
		_ = l.desktop.MouseUp(ctx, ButtonLeft)
		return nil, err
	}
	return done(l.desktop.MouseUp(ctx, ButtonLeft))
}

func (l *Local) scroll(ctx context.Context, action entity.Action) (*entity.ExecutionResult, error) {
	var dx, dy float64
	switch strings.ToLower(strings.TrimSpace(action.Input(entity.InputDirection))) {
	case "up":
		dy = -scrollStep
	case "down":
		dy = scrollStep
	case "left":
		dx = -scrollStep
	case "right":
		dx = scrollStep
	default:
		return entity.Failed(fmt.Sprintf("unknown scroll direction %q", action.Input(entity.InputDirection))), nil
	}

	if action.StartCoords != nil {
		if err := l.moveTo(ctx, action); err != nil {
			return nil, err
		}
	}
	return done(l.desktop.Scroll(ctx, dx, dy))
}

func (l *Local) typeText(ctx context.Context, content string) (*entity.ExecutionResult, error) {
	submit := strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")

	if content != "" {
		if err := l.desktop.TypeText(ctx, content); err != nil {
			return nil, err
		}
	}
	if submit {
		return done(l.desktop.PressKeys(ctx, []string{"enter"}))
	}
	return entity.Succeeded(), nil
}

func done(err error) (*entity.ExecutionResult, error) {
	if err != nil {
		return nil, err
	}
	return entity.Succeeded(), nil
}

func roundPoint(p entity.Point) (float64, float64) {
	return math.Round(p.X), math.Round(p.Y)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
