package userinteraction

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.RoundObserver = (*ConsoleObserver)(nil)

// ConsoleObserver prints round progress. One writer may be shared by several
// sessions; each line is tagged with the session's target.
type ConsoleObserver struct {
	mu     *sync.Mutex
	out    io.Writer
	target string
}

func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	if out == nil {
		out = color.Output
	}
	return &ConsoleObserver{mu: &sync.Mutex{}, out: out}
}

// ForTarget returns an observer sharing the same writer, tagged with target.
func (u *ConsoleObserver) ForTarget(target string) *ConsoleObserver {
	return &ConsoleObserver{mu: u.mu, out: u.out, target: target}
}

func (u *ConsoleObserver) printf(c *color.Color, format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.target != "" {
		color.New(color.Faint).Fprintf(u.out, "[%s] ", u.target)
	}
	c.Fprintf(u.out, format, args...)
}

func (u *ConsoleObserver) ShowRound(ctx context.Context, round, maxRounds int) {
	u.printf(color.New(color.FgCyan, color.Bold), "━━━ Round %d/%d ━━━\n", round, maxRounds)
}

func (u *ConsoleObserver) ShowThinking(ctx context.Context, thought string) {
	if thought == "" {
		return
	}
	u.printf(color.New(color.FgBlue), "💭 %s\n", truncate(thought, 500))
}

func (u *ConsoleObserver) ShowAction(ctx context.Context, action entity.Action) {
	u.printf(color.New(color.FgYellow, color.Bold), "%s %s%s\n", icon(action.Type), action.Type, describe(action))
}

func (u *ConsoleObserver) ShowResult(ctx context.Context, action entity.Action, result *entity.ExecutionResult, err error) {
	switch {
	case err != nil:
		u.printf(color.New(color.FgRed), "❌ %s\n", truncate(err.Error(), 300))
	case result != nil && result.Message != "":
		u.printf(color.New(color.FgGreen), "✓ %s\n", result.Message)
	default:
		u.printf(color.New(color.FgGreen), "✓ done\n")
	}
}

func (u *ConsoleObserver) ShowDropped(ctx context.Context, err error) {
	u.printf(color.New(color.Faint), "⚠ skipped: %s\n", truncate(err.Error(), 300))
}

func icon(t entity.ActionType) string {
	switch t {
	case entity.ActionClick, entity.ActionLeftDouble, entity.ActionRightSingle, entity.ActionLongPress:
		return "🖱️"
	case entity.ActionTypeText:
		return "✏️"
	case entity.ActionScroll, entity.ActionDrag:
		return "📜"
	case entity.ActionHotkey, entity.ActionPress, entity.ActionPressHome, entity.ActionPressBack:
		return "⌨️"
	case entity.ActionWait:
		return "⏸️"
	case entity.ActionFinished:
		return "🏁"
	case entity.ActionCallUser:
		return "❓"
	default:
		return "🔧"
	}
}

func describe(a entity.Action) string {
	var parts []string
	if a.StartCoords != nil {
		parts = append(parts, "at "+a.StartCoords.String())
	}
	if a.EndCoords != nil {
		parts = append(parts, "to "+a.EndCoords.String())
	}

	keys := make([]string, 0, len(a.Inputs))
	for k := range a.Inputs {
		if strings.HasSuffix(k, "_box") || strings.HasSuffix(k, "point") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, truncate(a.Inputs[k], 80)))
	}

	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
