// Package agentloop runs the capture, predict, parse, map and execute cycle
// against one operator until the model emits a terminal action.
package agentloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/usecase/actionparser"
	"gui-agent/internal/usecase/coords"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var _ input.TaskExecutor = (*Loop)(nil)

type Config struct {
	Target                 entity.Target
	Factors                entity.Factors
	MaxRounds              int
	MaxImages              int
	RoundInterval          time.Duration
	ExecuteRetries         int
	MaxConsecutiveFailures int
}

func DefaultConfig() Config {
	return Config{
		Factors:                entity.DefaultFactors,
		MaxRounds:              100,
		MaxImages:              5,
		RoundInterval:          500 * time.Millisecond,
		MaxConsecutiveFailures: 5,
	}
}

// PromptFunc renders the opening prompt for an instruction.
type PromptFunc func(instruction string) (string, error)

type Option func(*Loop)

func WithObserver(o output.RoundObserver) Option {
	return func(l *Loop) { l.observer = o }
}

// WithTransitionHook registers fn to be called on every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(l *Loop) { l.onTransition = fn }
}

func WithIDGenerator(fn func() string) Option {
	return func(l *Loop) { l.newID = fn }
}

// Loop is one agent session. Run is strictly sequential and must not be
// called concurrently on the same Loop.
type Loop struct {
	operator output.Operator
	model    output.ModelPort
	prompt   PromptFunc
	logger   output.LoggerPort
	cfg      Config

	observer     output.RoundObserver
	onTransition func(from, to State)
	newID        func() string
	limiter      *rate.Limiter

	mu    sync.Mutex
	state State
}

func New(
	operator output.Operator,
	model output.ModelPort,
	prompt PromptFunc,
	logger output.LoggerPort,
	cfg Config,
	opts ...Option,
) *Loop {
	if !cfg.Factors.Valid() {
		cfg.Factors = entity.DefaultFactors
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 1
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = 1
	}

	limit := rate.Inf
	if cfg.RoundInterval > 0 {
		limit = rate.Every(cfg.RoundInterval)
	}

	l := &Loop{
		operator: operator,
		model:    model,
		prompt:   prompt,
		logger:   logger,
		cfg:      cfg,
		observer: nopObserver{},
		newID:    uuid.NewString,
		limiter:  rate.NewLimiter(limit, 1),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) transition(to State) {
	l.mu.Lock()
	from := l.state
	l.state = to
	l.mu.Unlock()

	if l.onTransition != nil && from != to {
		l.onTransition(from, to)
	}
}

type run struct {
	log         output.LoggerPort
	result      *entity.RunResult
	conv        *conversation
	consecutive int
}

func (l *Loop) Run(ctx context.Context, instruction string) (*entity.RunResult, error) {
	runID := l.newID()
	r := &run{
		log: l.logger.WithFields(map[string]any{
			"run_id": runID,
			"target": l.cfg.Target.String(),
		}),
		result: &entity.RunResult{RunID: runID, Target: l.cfg.Target.String()},
	}

	prompt, err := l.prompt(instruction)
	if err != nil {
		return l.fail(r, fmt.Errorf("render prompt: %w", err))
	}
	r.conv = newConversation(prompt, l.cfg.MaxImages)

	r.log.Info("Run started", "instruction", instruction, "max_rounds", l.cfg.MaxRounds)

	for round := 1; ; round++ {
		if l.cfg.MaxRounds > 0 && round > l.cfg.MaxRounds {
			return l.fail(r, fmt.Errorf("max rounds (%d) exceeded", l.cfg.MaxRounds))
		}
		r.result.Rounds = round
		l.observer.ShowRound(ctx, round, l.cfg.MaxRounds)

		done, err := l.round(ctx, r, round)
		if err != nil {
			return l.fail(r, err)
		}
		if done {
			l.transition(StateFinished)
			r.result.Status = entity.RunFinished
			r.log.Info("Run finished", "rounds", round, "action", r.result.FinalAction.Type)
			return r.result, nil
		}
	}
}

// round performs one cycle. It reports whether a terminal action ran.
func (l *Loop) round(ctx context.Context, r *run, round int) (bool, error) {
	log := r.log.WithField("round", round)
	report := entity.RoundReport{Round: round}
	defer func() { r.result.History = append(r.result.History, report) }()

	l.transition(StateCapturing)
	if err := l.limiter.Wait(ctx); err != nil {
		return false, &entity.CancelledError{Stage: string(StateCapturing), Err: err}
	}
	shot, err := l.operator.Screenshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, &entity.CancelledError{Stage: string(StateCapturing), Err: ctx.Err()}
		}
		return false, &entity.CaptureError{Err: err}
	}
	if shot == nil {
		return false, &entity.CaptureError{Err: errors.New("operator returned no screenshot")}
	}
	screen := shot.Context()
	space, err := coords.NewSpace(l.cfg.Factors, screen)
	if err != nil {
		return false, &entity.CaptureError{Err: err}
	}
	r.conv.addScreenshot(shot.DataURL())
	log.Debug("Screenshot taken", "width", screen.Width, "height", screen.Height, "scale", screen.ScaleFactor)

	l.transition(StatePredicting)
	resp, err := l.model.Invoke(ctx, output.InvokeRequest{Messages: r.conv.messages()})
	if err != nil {
		if ctx.Err() != nil {
			return false, &entity.CancelledError{Stage: string(StatePredicting), Err: ctx.Err()}
		}
		return false, &entity.InvocationError{Model: l.model.Name(), Err: err}
	}
	report.Prediction = resp.Prediction
	r.conv.addPrediction(resp.Prediction)
	log.Info("Prediction received", "cost_ms", resp.CostMs)

	l.transition(StateParsing)
	pred, err := actionparser.Parse(resp.Prediction)
	if err != nil {
		log.Warn("No actionable output", "error", err)
		l.observer.ShowDropped(ctx, err)
		report.NoOp = true
		return false, nil
	}
	l.observer.ShowThinking(ctx, pred.Thought)
	for _, skipped := range pred.Skipped {
		log.Warn("Skipped malformed call", "error", skipped)
		l.observer.ShowDropped(ctx, skipped)
	}

	l.transition(StateMapping)
	mapped := make([]entity.Action, 0, len(pred.Actions))
	for _, action := range pred.Actions {
		m, err := coords.MapAction(space, action)
		if err != nil {
			log.Warn("Dropped action", "action", action.Type, "error", err)
			l.observer.ShowDropped(ctx, err)
			report.Dropped++
			continue
		}
		mapped = append(mapped, m)
	}
	if len(mapped) == 0 {
		report.NoOp = true
		return false, nil
	}

	l.transition(StateExecuting)
	// A dispatched action always completes; cancellation is seen at the next capture.
	execCtx := context.WithoutCancel(ctx)
	for _, action := range mapped {
		l.observer.ShowAction(execCtx, action)
		res, err := l.execute(execCtx, log, output.ExecuteParams{
			Action:     action,
			Prediction: resp.Prediction,
			Screen:     screen,
			Factors:    l.cfg.Factors,
		})
		l.observer.ShowResult(execCtx, action, res, err)

		if err != nil {
			report.Failures++
			r.consecutive++
			if r.consecutive >= l.cfg.MaxConsecutiveFailures {
				return false, fmt.Errorf("%d consecutive execution failures: %w", r.consecutive, err)
			}
			break
		}

		r.consecutive = 0
		report.Executed = append(report.Executed, action)
		if action.Type.Terminal() {
			final := action
			r.result.FinalAction = &final
			return true, nil
		}
	}
	return false, nil
}

// execute runs one action, retrying up to ExecuteRetries times. Any failure
// is reported as *entity.ExecutionError.
func (l *Loop) execute(ctx context.Context, log output.LoggerPort, params output.ExecuteParams) (*entity.ExecutionResult, error) {
	var (
		res     *entity.ExecutionResult
		lastErr error
	)
	for attempt := 0; attempt <= l.cfg.ExecuteRetries; attempt++ {
		var err error
		res, err = l.operator.Execute(ctx, params)
		switch {
		case err != nil:
			lastErr = &entity.ExecutionError{Action: params.Action.Type, Message: err.Error(), Err: err}
		case res == nil:
			lastErr = &entity.ExecutionError{Action: params.Action.Type, Message: "operator returned no result"}
		case !res.Success:
			lastErr = &entity.ExecutionError{Action: params.Action.Type, Message: res.Message}
		default:
			log.Info("Action executed", "action", params.Action.Type, "attempt", attempt+1)
			return res, nil
		}
		log.Warn("Action failed", "action", params.Action.Type, "attempt", attempt+1, "error", lastErr)
	}
	return res, lastErr
}

func (l *Loop) fail(r *run, err error) (*entity.RunResult, error) {
	l.transition(StateFailed)
	r.result.Status = entity.RunFailed
	r.result.Err = err

	var cancelled *entity.CancelledError
	if errors.As(err, &cancelled) {
		r.log.Warn("Run cancelled", "stage", cancelled.Stage)
	} else {
		r.log.Error("Run failed", "error", err)
	}
	return r.result, err
}

type nopObserver struct{}

func (nopObserver) ShowRound(context.Context, int, int)                                       {}
func (nopObserver) ShowThinking(context.Context, string)                                      {}
func (nopObserver) ShowAction(context.Context, entity.Action)                                 {}
func (nopObserver) ShowResult(context.Context, entity.Action, *entity.ExecutionResult, error) {}
func (nopObserver) ShowDropped(context.Context, error)                                        {}
