package adb

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"strconv"
	"strings"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.Operator = (*Operator)(nil)

const adbKeyboardAction = "ADB_INPUT_TEXT"

type Options struct {
	SwipeDuration     time.Duration
	LongPressDuration time.Duration
	WaitDuration      time.Duration
	// ADBKeyboard sends all text through the ADBKeyBoard IME broadcast.
	// Non-ASCII text always uses it since `input text` cannot type it.
	ADBKeyboard bool
}

func DefaultOptions() Options {
	return Options{
		SwipeDuration:     300 * time.Millisecond,
		LongPressDuration: time.Second,
		WaitDuration:      5 * time.Second,
	}
}

// Operator is the base device operator: one adb device, bound at construction.
// Screenshots are taken at the device's native resolution, so the scale
// factor is always 1.
type Operator struct {
	runner   Runner
	deviceID string
	opts     Options
	logger   output.LoggerPort
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewOperator(runner Runner, deviceID string, opts Options, logger output.LoggerPort) *Operator {
	return &Operator{
		runner:   runner,
		deviceID: deviceID,
		opts:     opts,
		logger:   logger.WithField("device", deviceID),
		sleep:    sleepCtx,
	}
}

func (o *Operator) DeviceID() string {
	return o.deviceID
}

func (o *Operator) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	data, err := o.runner.Run(ctx, "-s", o.deviceID, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("screencap %s: %w", o.deviceID, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screencap %s: %w", o.deviceID, err)
	}

	return &entity.Screenshot{
		Data:        data,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		ScaleFactor: 1,
		DisplayID:   o.deviceID,
	}, nil
}

func (o *Operator) Execute(ctx context.Context, params output.ExecuteParams) (*entity.ExecutionResult, error) {
	action := params.Action
	o.logger.Debug("executing action", "action", action.Type, "inputs", action.Inputs)

	switch action.Type {
	case entity.ActionClick:
		x, y, err := start(action)
		if err != nil {
			return nil, err
		}
		return o.shell(ctx, "input", "tap", x, y)

	case entity.ActionLeftDouble:
		x, y, err := start(action)
		if err != nil {
			return nil, err
		}
		if _, err := o.shell(ctx, "input", "tap", x, y); err != nil {
			return nil, err
		}
		return o.shell(ctx, "input", "tap", x, y)

	case entity.ActionLongPress:
		x, y, err := start(action)
		if err != nil {
			return nil, err
		}
		return o.shell(ctx, "input", "swipe", x, y, x, y, millis(o.opts.LongPressDuration))

	case entity.ActionDrag:
		x1, y1, err := start(action)
		if err != nil {
			return nil, err
		}
		if action.EndCoords == nil {
			return nil, fmt.Errorf("%s requires an end point", action.Type)
		}
		x2, y2 := round(*action.EndCoords)
		return o.shell(ctx, "input", "swipe", x1, y1, x2, y2, millis(o.opts.SwipeDuration))

	case entity.ActionScroll:
		return o.scroll(ctx, action, params.Screen)

	case entity.ActionTypeText:
		return o.typeText(ctx, action.Input(entity.InputContent))

	case entity.ActionHotkey, entity.ActionPress:
		return o.keys(ctx, action.Input(entity.InputKey))

	case entity.ActionPressHome:
		return o.shell(ctx, "input", "keyevent", "KEYCODE_HOME")

	case entity.ActionPressBack:
		return o.shell(ctx, "input", "keyevent", "KEYCODE_BACK")

	case entity.ActionOpenApp:
		pkg := strings.TrimSpace(action.Input(entity.InputAppName))
		if pkg == "" {
			return entity.Failed("open_app requires app_name"), nil
		}
		return o.shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")

	case entity.ActionWait:
		if err := o.sleep(ctx, o.opts.WaitDuration); err != nil {
			return nil, err
		}
		return entity.Succeeded(), nil

	case entity.ActionFinished, entity.ActionCallUser:
		return entity.Succeeded(), nil

	default:
		return entity.Failed(fmt.Sprintf("action %s is not supported on android devices", action.Type)), nil
	}
}

func (o *Operator) shell(ctx context.Context, args ...string) (*entity.ExecutionResult, error) {
	full := append([]string{"-s", o.deviceID, "shell"}, args...)
	if _, err := o.runner.Run(ctx, full...); err != nil {
		return nil, err
	}
	return entity.Succeeded(), nil
}

func (o *Operator) scroll(ctx context.Context, action entity.Action, screen entity.ScreenContext) (*entity.ExecutionResult, error) {
	cx, cy := float64(screen.Width)/2, float64(screen.Height)/2
	if action.StartCoords != nil {
		cx, cy = action.StartCoords.X, action.StartCoords.Y
	}

	// The finger moves against the scroll direction.
	dx, dy := float64(screen.Width)/3, float64(screen.Height)/3
	var to entity.Point
	switch strings.ToLower(strings.TrimSpace(action.Input(entity.InputDirection))) {
	case "down":
		to = entity.Point{X: cx, Y: cy - dy}
	case "up":
		to = entity.Point{X: cx, Y: cy + dy}
	case "left":
		to = entity.Point{X: cx + dx, Y: cy}
	case "right":
		to = entity.Point{X: cx - dx, Y: cy}
	default:
		return entity.Failed(fmt.Sprintf("unknown scroll direction %q", action.Input(entity.InputDirection))), nil
	}

	x1, y1 := round(entity.Point{X: cx, Y: cy})
	x2, y2 := round(to)
	return o.shell(ctx, "input", "swipe", x1, y1, x2, y2, millis(o.opts.SwipeDuration))
}

// typeText types content line by line. Newlines and tabs become key events so
// no control character ever reaches the device shell.
func (o *Operator) typeText(ctx context.Context, content string) (*entity.ExecutionResult, error) {
	for _, seg := range splitText(content) {
		if seg.key != "" {
			if _, err := o.shell(ctx, "input", "keyevent", seg.key); err != nil {
				return nil, err
			}
			continue
		}

		var err error
		if o.opts.ADBKeyboard || needsKeyboard(seg.text) {
			_, err = o.shell(ctx, "am", "broadcast", "-a", adbKeyboardAction, "--es", "msg", shellQuote(seg.text))
		} else {
			_, err = o.shell(ctx, "input", "text", escapeText(seg.text))
		}
		if err != nil {
			return nil, err
		}
	}
	return entity.Succeeded(), nil
}

// keys presses each key in a space or plus separated combination in turn.
func (o *Operator) keys(ctx context.Context, combo string) (*entity.ExecutionResult, error) {
	names := strings.FieldsFunc(combo, func(r rune) bool { return r == ' ' || r == '+' })
	if len(names) == 0 {
		return entity.Failed("no key given"), nil
	}

	codes := make([]string, 0, len(names))
	for _, n := range names {
		code, ok := keycode(n)
		if !ok {
			return entity.Failed(fmt.Sprintf("unsupported key %q", n)), nil
		}
		codes = append(codes, code)
	}

	for _, code := range codes {
		if _, err := o.shell(ctx, "input", "keyevent", code); err != nil {
			return nil, err
		}
	}
	return entity.Succeeded(), nil
}

func start(action entity.Action) (string, string, error) {
	if action.StartCoords == nil {
		return "", "", fmt.Errorf("%s requires a target point", action.Type)
	}
	x, y := round(*action.StartCoords)
	return x, y, nil
}

func round(p entity.Point) (string, string) {
	return strconv.Itoa(int(math.Round(p.X))), strconv.Itoa(int(math.Round(p.Y)))
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
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
