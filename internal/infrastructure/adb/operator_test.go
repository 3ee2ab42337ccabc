package adb

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOperator(runner Runner) *Operator {
	op := NewOperator(runner, "emulator-5554", DefaultOptions(), logger.NewNop())
	op.sleep = func(context.Context, time.Duration) error { return nil }
	return op
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func params(a entity.Action) output.ExecuteParams {
	return output.ExecuteParams{
		Action:  a,
		Screen:  entity.ScreenContext{Width: 1080, Height: 2340, ScaleFactor: 1},
		Factors: entity.DefaultFactors,
	}
}

func at(x, y float64) *entity.Point {
	return &entity.Point{X: x, Y: y}
}

func TestOperator_Screenshot(t *testing.T) {
	runner := newFakeRunner()
	runner.out["screencap"] = pngBytes(t, 108, 234)

	shot, err := newTestOperator(runner).Screenshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 108, shot.Width)
	assert.Equal(t, 234, shot.Height)
	assert.Equal(t, "png", shot.Format)
	assert.Equal(t, 1.0, shot.ScaleFactor)
	assert.Equal(t, "emulator-5554", shot.DisplayID)
	assert.Equal(t, []string{"-s emulator-5554 exec-out screencap -p"}, runner.Calls())
}

func TestOperator_ScreenshotUndecodable(t *testing.T) {
	runner := newFakeRunner()
	runner.out["screencap"] = []byte("error: device offline")

	_, err := newTestOperator(runner).Screenshot(context.Background())
	assert.Error(t, err)
}

func TestOperator_Execute(t *testing.T) {
	tests := []struct {
		name   string
		action entity.Action
		want   []string
	}{
		{
			name:   "click rounds coordinates",
			action: entity.Action{Type: entity.ActionClick, StartCoords: at(118.8, 491.4)},
			want:   []string{"-s emulator-5554 shell input tap 119 491"},
		},
		{
			name:   "double tap",
			action: entity.Action{Type: entity.ActionLeftDouble, StartCoords: at(10, 20)},
			want: []string{
				"-s emulator-5554 shell input tap 10 20",
				"-s emulator-5554 shell input tap 10 20",
			},
		},
		{
			name:   "long press",
			action: entity.Action{Type: entity.ActionLongPress, StartCoords: at(10, 20)},
			want:   []string{"-s emulator-5554 shell input swipe 10 20 10 20 1000"},
		},
		{
			name:   "drag",
			action: entity.Action{Type: entity.ActionDrag, StartCoords: at(10, 20), EndCoords: at(30.4, 40.6)},
			want:   []string{"-s emulator-5554 shell input swipe 10 20 30 41 300"},
		},
		{
			name:   "scroll down from screen center",
			action: entity.Action{Type: entity.ActionScroll, Inputs: map[string]string{entity.InputDirection: "down"}},
			want:   []string{"-s emulator-5554 shell input swipe 540 1170 540 390 300"},
		},
		{
			name: "scroll left at point",
			action: entity.Action{
				Type:        entity.ActionScroll,
				Inputs:      map[string]string{entity.InputDirection: "left"},
				StartCoords: at(100, 100),
			},
			want: []string{"-s emulator-5554 shell input swipe 100 100 460 100 300"},
		},
		{
			name:   "ascii text",
			action: entity.Action{Type: entity.ActionTypeText, Inputs: map[string]string{entity.InputContent: "hi there"}},
			want:   []string{"-s emulator-5554 shell input text hi%sthere"},
		},
		{
			name:   "text with submit",
			action: entity.Action{Type: entity.ActionTypeText, Inputs: map[string]string{entity.InputContent: "go\n"}},
			want: []string{
				"-s emulator-5554 shell input text go",
				"-s emulator-5554 shell input keyevent KEYCODE_ENTER",
			},
		},
		{
			name:   "multi-line text types each line and presses enter between",
			action: entity.Action{Type: entity.ActionTypeText, Inputs: map[string]string{entity.InputContent: "first line\nreboot\n"}},
			want: []string{
				"-s emulator-5554 shell input text first%sline",
				"-s emulator-5554 shell input keyevent KEYCODE_ENTER",
				"-s emulator-5554 shell input text reboot",
				"-s emulator-5554 shell input keyevent KEYCODE_ENTER",
			},
		},
		{
			name:   "tab and carriage return become key events",
			action: entity.Action{Type: entity.ActionTypeText, Inputs: map[string]string{entity.InputContent: "user\tpass\r\n"}},
			want: []string{
				"-s emulator-5554 shell input text user",
				"-s emulator-5554 shell input keyevent KEYCODE_TAB",
				"-s emulator-5554 shell input text pass",
				"-s emulator-5554 shell input keyevent KEYCODE_ENTER",
			},
		},
		{
			name:   "percent sign uses adb keyboard",
			action: entity.Action{Type: entity.ActionTypeText, Inputs: map[string]string{entity.InputContent: "100%sure"}},
			want:   []string{"-s emulator-5554 shell am broadcast -a ADB_INPUT_TEXT --es msg '100%sure'"},
		},
		{
			name:   "non-ascii text uses adb keyboard",
			action: entity.Action{Type: entity.ActionTypeText, Inputs: map[string]string{entity.InputContent: "héllo"}},
			want:   []string{"-s emulator-5554 shell am broadcast -a ADB_INPUT_TEXT --es msg 'héllo'"},
		},
		{
			name:   "hotkey sequence",
			action: entity.Action{Type: entity.ActionHotkey, Inputs: map[string]string{entity.InputKey: "back enter"}},
			want: []string{
				"-s emulator-5554 shell input keyevent KEYCODE_BACK",
				"-s emulator-5554 shell input keyevent KEYCODE_ENTER",
			},
		},
		{
			name:   "press home",
			action: entity.Action{Type: entity.ActionPressHome},
			want:   []string{"-s emulator-5554 shell input keyevent KEYCODE_HOME"},
		},
		{
			name:   "press back",
			action: entity.Action{Type: entity.ActionPressBack},
			want:   []string{"-s emulator-5554 shell input keyevent KEYCODE_BACK"},
		},
		{
			name:   "open app",
			action: entity.Action{Type: entity.ActionOpenApp, Inputs: map[string]string{entity.InputAppName: "com.android.settings"}},
			want:   []string{"-s emulator-5554 shell monkey -p com.android.settings -c android.intent.category.LAUNCHER 1"},
		},
		{
			name:   "wait",
			action: entity.Action{Type: entity.ActionWait},
		},
		{
			name:   "finished",
			action: entity.Action{Type: entity.ActionFinished},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner()
			res, err := newTestOperator(runner).Execute(context.Background(), params(tt.action))
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, tt.want, runner.Calls())
		})
	}
}

func TestOperator_ExecuteUnsupported(t *testing.T) {
	tests := []entity.Action{
		{Type: entity.ActionHover, StartCoords: at(1, 1)},
		{Type: entity.ActionRightSingle, StartCoords: at(1, 1)},
		{Type: entity.ActionHotkey, Inputs: map[string]string{entity.InputKey: "ctrl+shift"}},
		{Type: entity.ActionScroll, Inputs: map[string]string{entity.InputDirection: "sideways"}},
		{Type: entity.ActionOpenApp},
	}

	for _, a := range tests {
		t.Run(string(a.Type), func(t *testing.T) {
			runner := newFakeRunner()
			res, err := newTestOperator(runner).Execute(context.Background(), params(a))
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)
			assert.Empty(t, runner.Calls())
		})
	}
}

func TestOperator_ExecuteMissingTarget(t *testing.T) {
	runner := newFakeRunner()
	_, err := newTestOperator(runner).Execute(context.Background(), params(entity.Action{Type: entity.ActionClick}))
	assert.Error(t, err)
	assert.Empty(t, runner.Calls())
}

func TestOperator_ExecuteCommandFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn = "input tap"
	runner.err = errors.New("execution failed")

	res, err := newTestOperator(runner).Execute(context.Background(),
		params(entity.Action{Type: entity.ActionClick, StartCoords: at(1, 1)}))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, runner.err)
}

func TestOperator_WaitHonoursContext(t *testing.T) {
	op := NewOperator(newFakeRunner(), "emulator-5554", Options{WaitDuration: time.Hour}, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := op.Execute(ctx, params(entity.Action{Type: entity.ActionWait}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "a%sb", escapeText("a b"))
	assert.Equal(t, `it\'s`, escapeText("it's"))
	assert.Equal(t, `a\&b`, escapeText("a&b"))
}

func TestSplitText(t *testing.T) {
	got := splitText("a b\n\x1bc\td")
	assert.Equal(t, []textSegment{
		{text: "a b"},
		{key: "KEYCODE_ENTER"},
		{text: "c"},
		{key: "KEYCODE_TAB"},
		{text: "d"},
	}, got)

	for _, seg := range splitText("line one\r\nline two\nrm -rf /\n") {
		assert.NotContains(t, seg.text, "\n")
		assert.NotContains(t, seg.text, "\r")
	}
}

func TestNeedsKeyboard(t *testing.T) {
	assert.False(t, needsKeyboard("plain text"))
	assert.True(t, needsKeyboard("100%sure"))
	assert.True(t, needsKeyboard("héllo"))
}
