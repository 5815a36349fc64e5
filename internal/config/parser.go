package config

import "strings"

// Parse reads JSONC configuration content over base and validates the result.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg, warnings, err := parseContent(content, base)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, append(warnings, validatedWarnings...), nil
}

func parseContent(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		return base, nil, nil
	}
	return parseJSONC(content, base)
}
