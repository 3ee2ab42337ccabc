package di

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/config"
	"gui-agent/internal/infrastructure/llm/langchain"
	"gui-agent/internal/infrastructure/llm/openrouter"
	"gui-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Model.APIKey = "test-key"
	return cfg
}

func TestNewContainer_DefaultProvider(t *testing.T) {
	c, err := NewContainer(testConfig(), &bytes.Buffer{}, WithLogger(logger.NewNop()))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &openrouter.OpenRouterAdapter{}, c.Model)
	assert.Equal(t, "ui-tars-1.5-7b", c.Model.Name())
	assert.NotNil(t, c.Sessions)
	assert.NotNil(t, c.Server)
	assert.False(t, c.Registry.Available())
}

func TestNewContainer_LangchainProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Provider = "langchain"

	c, err := NewContainer(cfg, &bytes.Buffer{}, WithLogger(logger.NewNop()))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &langchain.Adapter{}, c.Model)
}

func TestPromptRenderer_PicksActionSpace(t *testing.T) {
	render := promptRenderer(testConfig().Model)

	computer, err := render(entity.ParseTarget("local"), "open the browser")
	require.NoError(t, err)
	assert.Contains(t, computer, "open the browser")
	assert.Contains(t, computer, "hotkey(")

	mobile, err := render(entity.ParseTarget("emulator-5554"), "open settings")
	require.NoError(t, err)
	assert.Contains(t, mobile, "open_app(")
}

func TestLoopConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.RoundInterval = time.Second
	cfg.Agent.ExecuteRetries = 2

	got := loopConfig(cfg)
	assert.Equal(t, entity.DefaultFactors, got.Factors)
	assert.Equal(t, 100, got.MaxRounds)
	assert.Equal(t, 5, got.MaxImages)
	assert.Equal(t, time.Second, got.RoundInterval)
	assert.Equal(t, 2, got.ExecuteRetries)
	assert.Equal(t, 5, got.MaxConsecutiveFailures)
}

type scriptedRunner struct {
	out []byte
	err error
}

func (r scriptedRunner) Run(context.Context, ...string) ([]byte, error) {
	return r.out, r.err
}

func TestContainer_OnlineTargets(t *testing.T) {
	runner := scriptedRunner{out: []byte("List of devices attached\n" +
		"emulator-5556          offline\n" +
		"emulator-5554          device product:sdk model:Pixel_7\n")}

	c, err := NewContainer(testConfig(), &bytes.Buffer{}, WithLogger(logger.NewNop()), WithADBRunner(runner))
	require.NoError(t, err)
	defer c.Close()

	targets := c.OnlineTargets(context.Background())
	assert.Equal(t, []entity.Target{{DeviceID: "emulator-5554"}}, targets)
	assert.True(t, c.Registry.Available())
}

func TestContainer_OnlineTargetsWithoutADB(t *testing.T) {
	runner := scriptedRunner{err: errors.New("adb: executable file not found in $PATH")}

	c, err := NewContainer(testConfig(), &bytes.Buffer{}, WithLogger(logger.NewNop()), WithADBRunner(runner))
	require.NoError(t, err)
	defer c.Close()

	assert.Empty(t, c.OnlineTargets(context.Background()))
	assert.False(t, c.Registry.Available())
}
