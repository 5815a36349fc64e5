package config

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/text/language"

	"github.com/rbright/voicecmd/internal/transport"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Link.Host) == "" {
		return nil, fmt.Errorf("link.host must not be empty")
	}
	if err := transport.RequireLoopback(cfg.Link.Host); err != nil {
		return nil, fmt.Errorf("link.host: %w", err)
	}
	if err := validatePort("link.consumer_port", cfg.Link.ConsumerPort); err != nil {
		return nil, err
	}
	if err := validatePort("link.host_port", cfg.Link.HostPort); err != nil {
		return nil, err
	}
	if cfg.Link.ConsumerPort == cfg.Link.HostPort {
		return nil, fmt.Errorf("link.consumer_port and link.host_port must differ")
	}

	if cfg.Dispatch.MinConfidence < 0 || cfg.Dispatch.MinConfidence > 1 {
		return nil, fmt.Errorf("dispatch.min_confidence must be within [0, 1]")
	}
	if cfg.Dispatch.PTTGraceMS < 0 {
		return nil, fmt.Errorf("dispatch.ptt_grace_ms must be >= 0")
	}
	if cfg.Dispatch.TickMS <= 0 {
		return nil, fmt.Errorf("dispatch.tick_ms must be > 0")
	}

	if cfg.Reload.RetryIntervalMS < 0 {
		return nil, fmt.Errorf("reload.retry_interval_ms must be >= 0")
	}
	if cfg.Reload.MaxAttempts < 0 {
		return nil, fmt.Errorf("reload.max_attempts must be >= 0")
	}

	if strings.TrimSpace(cfg.Grammar.Language) == "" {
		return nil, fmt.Errorf("grammar.language must not be empty")
	}
	if _, err := language.Parse(cfg.Grammar.Language); err != nil {
		return nil, fmt.Errorf("grammar.language %q: %w", cfg.Grammar.Language, err)
	}

	host, port, err := net.SplitHostPort(cfg.Health.Addr)
	if err != nil {
		return nil, fmt.Errorf("health.addr: %w", err)
	}
	if err := transport.RequireLoopback(host); err != nil {
		return nil, fmt.Errorf("health.addr: %w", err)
	}
	if port == "" {
		return nil, fmt.Errorf("health.addr must include a port")
	}
	if cfg.Health.PollMS <= 0 {
		return nil, fmt.Errorf("health.poll_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Audio.Input) == "" {
		return nil, fmt.Errorf("audio.input must not be empty")
	}
	if strings.TrimSpace(cfg.Audio.Fallback) == "" {
		warnings = append(warnings, Warning{Message: "audio.fallback is empty; input selection will not fall back"})
	}

	if cfg.Indicator.TimeoutMS <= 0 {
		return nil, fmt.Errorf("indicator.timeout_ms must be > 0")
	}
	if cfg.Indicator.Desktop && cfg.Indicator.AppName == "" {
		return nil, fmt.Errorf("indicator.app_name must not be empty when indicator.desktop is enabled")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be within 1-65535", field)
	}
	return nil
}
