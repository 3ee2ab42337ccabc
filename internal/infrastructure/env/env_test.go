package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvService_FirstOf(t *testing.T) {
	t.Setenv("GUIAGENT_TEST_FIRST", "")
	t.Setenv("GUIAGENT_TEST_SECOND", "second")

	e := &EnvService{}

	assert.Equal(t, "second", e.FirstOf("GUIAGENT_TEST_FIRST", "GUIAGENT_TEST_SECOND"))
	assert.Empty(t, e.FirstOf("GUIAGENT_TEST_FIRST"))
	assert.Empty(t, e.FirstOf())
}

func TestEnvService_AppEnv(t *testing.T) {
	t.Setenv("GUIAGENT_APP_ENV", "")
	t.Setenv("APP_ENV", "")
	e := &EnvService{}
	assert.Equal(t, "dev", e.AppEnv())

	t.Setenv("APP_ENV", "ci")
	assert.Equal(t, "ci", e.AppEnv())

	t.Setenv("GUIAGENT_APP_ENV", "prod")
	assert.Equal(t, "prod", e.AppEnv())
}

func TestEnvService_LoadsProfileOverBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("APP_ENV=staging\nGUIAGENT_TEST_KEY=base\nGUIAGENT_TEST_ONLY_BASE=kept\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging"),
		[]byte("GUIAGENT_TEST_KEY=staging\n"), 0o600))

	// Registered so t.Setenv restores the variables godotenv writes.
	t.Setenv("GUIAGENT_APP_ENV", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("GUIAGENT_TEST_KEY", "")
	t.Setenv("GUIAGENT_TEST_ONLY_BASE", "")
	for _, k := range []string{"APP_ENV", "GUIAGENT_TEST_KEY", "GUIAGENT_TEST_ONLY_BASE"} {
		require.NoError(t, os.Unsetenv(k))
	}

	e := &EnvService{}
	e.loadFrom(dir)

	assert.Equal(t, "staging", e.AppEnv())
	assert.Equal(t, "staging", e.FirstOf("GUIAGENT_TEST_KEY"))
	assert.Equal(t, "kept", e.FirstOf("GUIAGENT_TEST_ONLY_BASE"))
}

func TestEnvService_MissingFilesAreIgnored(t *testing.T) {
	t.Setenv("GUIAGENT_APP_ENV", "")
	t.Setenv("APP_ENV", "nowhere")

	e := &EnvService{}
	assert.NotPanics(t, func() { e.loadFrom(t.TempDir()) })
	assert.Equal(t, "nowhere", e.AppEnv())
}
