package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvFileName is the optional dotenv file read from the config directory.
const EnvFileName = ".env"

// ApplyEnv overlays VOICECMD_* variables onto cfg. Values from a .env file
// beside configPath fill in anything the process environment leaves unset.
func ApplyEnv(cfg Config, configPath string) (Config, error) {
	environ, err := environment(configPath)
	if err != nil {
		return Config{}, err
	}

	out := cfg
	if err := env.ParseWithOptions(&out, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

func environment(configPath string) (map[string]string, error) {
	merged := make(map[string]string)

	if strings.TrimSpace(configPath) != "" {
		dotenvPath := filepath.Join(filepath.Dir(configPath), EnvFileName)
		values, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			for key, value := range values {
				merged[key] = value
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %q: %w", dotenvPath, err)
		}
	}

	for key, value := range env.ToMap(os.Environ()) {
		merged[key] = value
	}
	return merged, nil
}
