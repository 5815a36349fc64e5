package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, overlays environment, and validates the runtime configuration.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	exists := true
	var warnings []Warning

	content, err := os.ReadFile(resolvedPath)
	switch {
	case err == nil:
		base, warnings, err = parseContent(string(content), base)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		exists = false
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		})
	default:
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, err := ApplyEnv(base, resolvedPath)
	if err != nil {
		return Loaded{}, fmt.Errorf("config %q: %w", resolvedPath, err)
	}

	validated, err := Validate(cfg)
	if err != nil {
		return Loaded{}, fmt.Errorf("invalid config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: append(warnings, validated...),
		Exists:   exists,
	}, nil
}
