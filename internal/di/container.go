package di

import (
	"context"
	"fmt"
	"io"

	"gui-agent/internal/adapter/api"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/application/service"
	"gui-agent/internal/application/usecase"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/adb"
	"gui-agent/internal/infrastructure/config"
	desktoprod "gui-agent/internal/infrastructure/desktop/rod"
	"gui-agent/internal/infrastructure/llm/langchain"
	"gui-agent/internal/infrastructure/llm/openrouter"
	"gui-agent/internal/infrastructure/logger"
	"gui-agent/internal/infrastructure/operator"
	"gui-agent/internal/infrastructure/prompts"
	"gui-agent/internal/infrastructure/userinteraction"
	"gui-agent/internal/usecase/agentloop"
)

type Container struct {
	Config       *config.Config
	Logger       output.LoggerPort
	Registry     *service.DeviceRegistry
	Availability *service.AvailabilityChecker
	Operators    *operator.Factory
	Model        output.ModelPort
	Sessions     *usecase.ExecuteTaskUseCase
	Server       *api.Server
}

type Option func(*options)

type options struct {
	logger output.LoggerPort
	runner adb.Runner
}

// WithLogger replaces the configured zap logger.
func WithLogger(l output.LoggerPort) Option {
	return func(o *options) { o.logger = l }
}

// WithADBRunner replaces the adb executable runner.
func WithADBRunner(r adb.Runner) Option {
	return func(o *options) { o.runner = r }
}

// NewContainer wires the application from cfg. Round progress is rendered to out.
func NewContainer(cfg *config.Config, out io.Writer, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		l, err := logger.NewLoggerAdapter(cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}

	runner := o.runner
	if runner == nil {
		runner = adb.NewExecRunner(cfg.ADB.Path, cfg.ADB.CommandTimeout)
	}

	registry, writer := service.NewDeviceRegistry()
	checker := service.NewAvailabilityChecker(adb.NewBridge(runner), writer, log)

	factory := operator.NewFactory(
		newDesktop(cfg.Desktop),
		operator.LocalOptions{
			WaitDuration:      cfg.Desktop.WaitDuration,
			LongPressDuration: cfg.Desktop.LongPressDuration,
		},
		runner,
		adb.Options{
			SwipeDuration:     cfg.ADB.SwipeDuration,
			LongPressDuration: cfg.ADB.LongPressDuration,
			WaitDuration:      cfg.ADB.WaitDuration,
			ADBKeyboard:       cfg.ADB.ADBKeyboard,
		},
		registry,
		log,
	)

	model, err := newModel(cfg.Model, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	console := userinteraction.NewConsoleObserver(out)
	sessions := usecase.NewExecuteTaskUseCase(
		factory,
		model,
		promptRenderer(cfg.Model),
		func(target entity.Target) output.RoundObserver {
			return console.ForTarget(target.String())
		},
		log,
		usecase.ExecuteTaskConfig{Loop: loopConfig(cfg)},
	)

	server := api.NewServer(cfg.Server.Addr, api.NewHandlers(registry, checker, log), log)

	return &Container{
		Config:       cfg,
		Logger:       log,
		Registry:     registry,
		Availability: checker,
		Operators:    factory,
		Model:        model,
		Sessions:     sessions,
		Server:       server,
	}, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// OnlineTargets refreshes availability and returns one target per online device.
func (c *Container) OnlineTargets(ctx context.Context) []entity.Target {
	c.Availability.Check(ctx)

	var targets []entity.Target
	for _, d := range c.Registry.Devices() {
		if d.Online() {
			targets = append(targets, entity.Target{DeviceID: d.ID})
		}
	}
	return targets
}

func newDesktop(cfg config.DesktopConfig) func(ctx context.Context) (operator.Desktop, error) {
	return func(ctx context.Context) (operator.Desktop, error) {
		driver, err := desktoprod.New(ctx, desktoprod.Config{
			URL:         cfg.URL,
			Headless:    cfg.Headless,
			Width:       cfg.Width,
			Height:      cfg.Height,
			ScaleFactor: cfg.ScaleFactor,
			SlowMotion:  cfg.SlowMotion,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return driver, nil
	}
}

func newModel(cfg config.ModelConfig, log output.LoggerPort) (output.ModelPort, error) {
	switch cfg.Provider {
	case "langchain":
		model, err := langchain.New(langchain.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Name,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float64(cfg.Temperature),
			TopP:        float64(cfg.TopP),
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		return model, nil
	default:
		llmCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Name)
		if cfg.BaseURL != "" {
			llmCfg.BaseURL = cfg.BaseURL
		}
		llmCfg.MaxTokens = cfg.MaxTokens
		llmCfg.Temperature = cfg.Temperature
		llmCfg.TopP = cfg.TopP
		llmCfg.Timeout = cfg.Timeout
		llmCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(llmCfg), nil
	}
}

func promptRenderer(cfg config.ModelConfig) usecase.PromptRenderer {
	return func(target entity.Target, instruction string) (string, error) {
		return prompts.GenerateSystemPrompt(prompts.KindFor(target), prompts.SystemPromptData{
			Instruction:  instruction,
			Language:     cfg.Language,
			FactorWidth:  cfg.FactorWidth,
			FactorHeight: cfg.FactorHeight,
		})
	}
}

func loopConfig(cfg *config.Config) agentloop.Config {
	return agentloop.Config{
		Factors:                cfg.Model.Factors(),
		MaxRounds:              cfg.Agent.MaxRounds,
		MaxImages:              cfg.Model.MaxImages,
		RoundInterval:          cfg.Agent.RoundInterval,
		ExecuteRetries:         cfg.Agent.ExecuteRetries,
		MaxConsecutiveFailures: cfg.Agent.MaxConsecutiveFailures,
	}
}
