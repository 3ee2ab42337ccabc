package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/usecase/agentloop"

	"golang.org/x/sync/errgroup"
)

var _ input.SessionRunner = (*ExecuteTaskUseCase)(nil)

// PromptRenderer renders the opening prompt for a target's action space.
type PromptRenderer func(target entity.Target, instruction string) (string, error)

// ObserverFactory returns the round observer for one session.
type ObserverFactory func(target entity.Target) output.RoundObserver

type ExecuteTaskConfig struct {
	Loop agentloop.Config
	// MaxParallel bounds concurrent sessions in ExecuteAll. Zero means no limit.
	MaxParallel int
}

func DefaultExecuteTaskConfig() ExecuteTaskConfig {
	return ExecuteTaskConfig{Loop: agentloop.DefaultConfig()}
}

// ExecuteTaskUseCase builds one agent loop per session. Each session owns its
// operator; the model client is shared.
type ExecuteTaskUseCase struct {
	factory  output.OperatorFactory
	model    output.ModelPort
	prompt   PromptRenderer
	observer ObserverFactory
	logger   output.LoggerPort
	cfg      ExecuteTaskConfig
}

func NewExecuteTaskUseCase(
	factory output.OperatorFactory,
	model output.ModelPort,
	prompt PromptRenderer,
	observer ObserverFactory,
	logger output.LoggerPort,
	cfg ExecuteTaskConfig,
) *ExecuteTaskUseCase {
	return &ExecuteTaskUseCase{
		factory:  factory,
		model:    model,
		prompt:   prompt,
		observer: observer,
		logger:   logger,
		cfg:      cfg,
	}
}

func (uc *ExecuteTaskUseCase) Execute(ctx context.Context, target entity.Target, instruction string) (*entity.RunResult, error) {
	log := uc.logger.WithField("target", target.String())

	op, err := uc.factory.ForTarget(ctx, target)
	if err != nil {
		log.Error("Failed to open operator", "error", err)
		return nil, fmt.Errorf("open operator for %s: %w", target, err)
	}
	if closer, ok := op.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn("Failed to close operator", "error", err)
			}
		}()
	}

	cfg := uc.cfg.Loop
	cfg.Target = target

	var opts []agentloop.Option
	if uc.observer != nil {
		opts = append(opts, agentloop.WithObserver(uc.observer(target)))
	}

	prompt := func(instruction string) (string, error) {
		return uc.prompt(target, instruction)
	}

	loop := agentloop.New(op, uc.model, prompt, uc.logger, cfg, opts...)
	return loop.Run(ctx, instruction)
}

// ExecuteAll runs one independent session per target. A failing session does
// not cancel the others; results keep the order of targets and every session
// error is returned joined.
func (uc *ExecuteTaskUseCase) ExecuteAll(ctx context.Context, targets []entity.Target, instruction string) ([]*entity.RunResult, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets to run")
	}

	results := make([]*entity.RunResult, len(targets))
	errs := make([]error, len(targets))

	var g errgroup.Group
	if uc.cfg.MaxParallel > 0 {
		g.SetLimit(uc.cfg.MaxParallel)
	}
	for i, target := range targets {
		g.Go(func() error {
			results[i], errs[i] = uc.Execute(ctx, target, instruction)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
