// Package config loads agent settings from defaults, an optional YAML file,
// dotenv files and GUIAGENT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/env"

	"github.com/spf13/viper"
)

const EnvPrefix = "GUIAGENT"

type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Model   ModelConfig   `mapstructure:"model" yaml:"model"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	ADB     ADBConfig     `mapstructure:"adb" yaml:"adb"`
	Desktop DesktopConfig `mapstructure:"desktop" yaml:"desktop"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

type ModelConfig struct {
	// Provider is "openai" (go-openai client) or "langchain".
	Provider     string        `mapstructure:"provider" yaml:"provider"`
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey       string        `mapstructure:"api_key" yaml:"-"`
	Name         string        `mapstructure:"name" yaml:"name"`
	MaxTokens    int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature  float32       `mapstructure:"temperature" yaml:"temperature"`
	TopP         float32       `mapstructure:"top_p" yaml:"top_p"`
	FactorWidth  int           `mapstructure:"factor_width" yaml:"factor_width"`
	FactorHeight int           `mapstructure:"factor_height" yaml:"factor_height"`
	MaxImages    int           `mapstructure:"max_images" yaml:"max_images"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Language     string        `mapstructure:"language" yaml:"language"`
}

func (m ModelConfig) Factors() entity.Factors {
	return entity.Factors{Width: m.FactorWidth, Height: m.FactorHeight}
}

type AgentConfig struct {
	Target                 string        `mapstructure:"target" yaml:"target"`
	MaxRounds              int           `mapstructure:"max_rounds" yaml:"max_rounds"`
	RoundInterval          time.Duration `mapstructure:"round_interval" yaml:"round_interval"`
	ExecuteRetries         int           `mapstructure:"execute_retries" yaml:"execute_retries"`
	MaxConsecutiveFailures int           `mapstructure:"max_consecutive_failures" yaml:"max_consecutive_failures"`
}

type ADBConfig struct {
	Path              string        `mapstructure:"path" yaml:"path"`
	CommandTimeout    time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	SwipeDuration     time.Duration `mapstructure:"swipe_duration" yaml:"swipe_duration"`
	LongPressDuration time.Duration `mapstructure:"long_press_duration" yaml:"long_press_duration"`
	WaitDuration      time.Duration `mapstructure:"wait_duration" yaml:"wait_duration"`
	ADBKeyboard       bool          `mapstructure:"adb_keyboard" yaml:"adb_keyboard"`
}

type DesktopConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	Headless     bool          `mapstructure:"headless" yaml:"headless"`
	Width        int           `mapstructure:"width" yaml:"width"`
	Height       int           `mapstructure:"height" yaml:"height"`
	ScaleFactor  float64       `mapstructure:"scale_factor" yaml:"scale_factor"`
	SlowMotion   time.Duration `mapstructure:"slow_motion" yaml:"slow_motion"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	WaitDuration time.Duration `mapstructure:"wait_duration" yaml:"wait_duration"`

	LongPressDuration time.Duration `mapstructure:"long_press_duration" yaml:"long_press_duration"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// PollInterval refreshes device availability in the background. Zero disables polling.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// NewDefaultConfig returns the configuration built from defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gui-agent")
	v.SetDefault("logger.log_file", "log/gui-agent.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Model --
	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("model.name", "ui-tars-1.5-7b")
	v.SetDefault("model.max_tokens", 1000)
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.top_p", 0.7)
	v.SetDefault("model.factor_width", entity.DefaultFactors.Width)
	v.SetDefault("model.factor_height", entity.DefaultFactors.Height)
	v.SetDefault("model.max_images", 5)
	v.SetDefault("model.timeout", "2m")
	v.SetDefault("model.language", "en")

	// -- Agent --
	v.SetDefault("agent.target", entity.TargetLocal)
	v.SetDefault("agent.max_rounds", 100)
	v.SetDefault("agent.round_interval", "500ms")
	v.SetDefault("agent.execute_retries", 0)
	v.SetDefault("agent.max_consecutive_failures", 5)

	// -- ADB --
	v.SetDefault("adb.path", "adb")
	v.SetDefault("adb.command_timeout", "20s")
	v.SetDefault("adb.swipe_duration", "300ms")
	v.SetDefault("adb.long_press_duration", "1s")
	v.SetDefault("adb.wait_duration", "5s")
	v.SetDefault("adb.adb_keyboard", false)

	// -- Desktop --
	v.SetDefault("desktop.url", "about:blank")
	v.SetDefault("desktop.headless", false)
	v.SetDefault("desktop.width", 1280)
	v.SetDefault("desktop.height", 800)
	v.SetDefault("desktop.scale_factor", 1.0)
	v.SetDefault("desktop.slow_motion", "0s")
	v.SetDefault("desktop.timeout", "10s")
	v.SetDefault("desktop.wait_duration", "5s")
	v.SetDefault("desktop.long_press_duration", "1s")

	// -- Server --
	v.SetDefault("server.addr", ":8089")
	v.SetDefault("server.poll_interval", "10s")
}

// Load reads configuration into v. cfgFile may be empty, in which case
// ./config.yaml is used when present.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	var envService output.ConfigPort = env.NewEnvService()

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("model.api_key", EnvPrefix+"_MODEL_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = envService.FirstOf("OPENROUTER_API_KEY", "OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !c.Model.Factors().Valid() {
		return fmt.Errorf("model.factor_width and model.factor_height must be positive")
	}
	switch c.Model.Provider {
	case "openai", "langchain":
	default:
		return fmt.Errorf("model.provider must be openai or langchain, got %q", c.Model.Provider)
	}
	if c.Model.MaxImages <= 0 {
		return fmt.Errorf("model.max_images must be a positive integer")
	}
	if c.Agent.MaxRounds <= 0 {
		return fmt.Errorf("agent.max_rounds must be a positive integer")
	}
	if c.Agent.ExecuteRetries < 0 {
		return fmt.Errorf("agent.execute_retries must not be negative")
	}
	if c.Agent.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("agent.max_consecutive_failures must be a positive integer")
	}
	if c.Desktop.ScaleFactor <= 0 {
		return fmt.Errorf("desktop.scale_factor must be positive")
	}
	return nil
}
