package env

import (
	"log"
	"os"
	"path/filepath"

	"gui-agent/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

const defaultAppEnv = "dev"

type EnvService struct{}

// NewEnvService loads .env and then .env.$APP_ENV from the working directory
// on top of the process environment.
func NewEnvService() *EnvService {
	e := &EnvService{}
	e.loadFrom(".")
	return e
}

func (e *EnvService) loadFrom(dir string) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	// .env may itself pick the profile, so APP_ENV is read after it.
	profile := filepath.Join(dir, ".env."+e.AppEnv())
	if err := godotenv.Overload(profile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", profile, err)
	}
}

// AppEnv names the active profile, dev when unset.
func (e *EnvService) AppEnv() string {
	if v := e.FirstOf("GUIAGENT_APP_ENV", "APP_ENV"); v != "" {
		return v
	}
	return defaultAppEnv
}

// FirstOf returns the first non-empty variable among keys.
func (e *EnvService) FirstOf(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}
