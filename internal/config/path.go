package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// BindingsFileName is the default bindings file beside config.jsonc.
const BindingsFileName = "bindings.yaml"

// ResolvePath applies CLI/XDG/home fallback rules for config.jsonc location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "voicecmd", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "voicecmd", "config.jsonc"), nil
}

// ResolveBindingsPath picks the bindings file: explicit flag, then the
// configured path, then bindings.yaml beside the config file. Relative
// configured paths are taken relative to the config directory.
func ResolveBindingsPath(explicit string, cfg Config, configPath string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}

	configured := strings.TrimSpace(cfg.Bindings)
	if configured == "" {
		return filepath.Join(filepath.Dir(configPath), BindingsFileName)
	}
	if strings.HasPrefix(configured, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, configured[2:])
		}
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(filepath.Dir(configPath), configured)
}
