package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty host", mutate: func(c *Config) { c.Link.Host = " " }, wantErr: "link.host"},
		{name: "remote host", mutate: func(c *Config) { c.Link.Host = "192.168.1.4" }, wantErr: "link.host"},
		{name: "consumer port zero", mutate: func(c *Config) { c.Link.ConsumerPort = 0 }, wantErr: "link.consumer_port"},
		{name: "host port too large", mutate: func(c *Config) { c.Link.HostPort = 70000 }, wantErr: "link.host_port"},
		{name: "same ports", mutate: func(c *Config) { c.Link.HostPort = c.Link.ConsumerPort }, wantErr: "must differ"},
		{name: "confidence above one", mutate: func(c *Config) { c.Dispatch.MinConfidence = 1.5 }, wantErr: "min_confidence"},
		{name: "negative confidence", mutate: func(c *Config) { c.Dispatch.MinConfidence = -0.1 }, wantErr: "min_confidence"},
		{name: "negative grace", mutate: func(c *Config) { c.Dispatch.PTTGraceMS = -1 }, wantErr: "ptt_grace_ms"},
		{name: "zero tick", mutate: func(c *Config) { c.Dispatch.TickMS = 0 }, wantErr: "tick_ms"},
		{name: "negative retry interval", mutate: func(c *Config) { c.Reload.RetryIntervalMS = -5 }, wantErr: "retry_interval_ms"},
		{name: "negative attempts", mutate: func(c *Config) { c.Reload.MaxAttempts = -1 }, wantErr: "max_attempts"},
		{name: "empty language", mutate: func(c *Config) { c.Grammar.Language = "" }, wantErr: "grammar.language"},
		{name: "bad language", mutate: func(c *Config) { c.Grammar.Language = "not a tag!" }, wantErr: "grammar.language"},
		{name: "health without port", mutate: func(c *Config) { c.Health.Addr = "127.0.0.1" }, wantErr: "health.addr"},
		{name: "remote health", mutate: func(c *Config) { c.Health.Addr = "10.1.1.1:48287" }, wantErr: "health.addr"},
		{name: "zero poll", mutate: func(c *Config) { c.Health.PollMS = 0 }, wantErr: "poll_ms"},
		{name: "empty input", mutate: func(c *Config) { c.Audio.Input = "" }, wantErr: "audio.input"},
		{name: "zero indicator timeout", mutate: func(c *Config) { c.Indicator.TimeoutMS = 0 }, wantErr: "indicator.timeout_ms"},
		{name: "desktop without app name", mutate: func(c *Config) { c.Indicator.Desktop = true; c.Indicator.AppName = "" }, wantErr: "indicator.app_name"},
		{name: "unknown level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnEmptyFallback(t *testing.T) {
	cfg := Default()
	cfg.Audio.Fallback = ""
	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "audio.fallback")
}
