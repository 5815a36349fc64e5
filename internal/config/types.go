// Package config resolves, parses, validates, and defaults voicecmd configuration.
package config

// Config is the fully materialized runtime configuration used by voicecmd.
// Env tags name the overrides applied after the file is parsed.
type Config struct {
	Link      LinkConfig
	Dispatch  DispatchConfig
	Reload    ReloadConfig
	Grammar   GrammarConfig
	Health    HealthConfig
	Audio     AudioConfig
	Indicator IndicatorConfig
	Bindings  string `env:"VOICECMD_BINDINGS"`
	Log       LogConfig
}

// LinkConfig locates the loopback datagram link between consumer and host.
type LinkConfig struct {
	Host         string `env:"VOICECMD_LINK_HOST"`
	ConsumerPort int    `env:"VOICECMD_LINK_CONSUMER_PORT"`
	HostPort     int    `env:"VOICECMD_LINK_HOST_PORT"`
}

// DispatchConfig controls the consumer's recognition gate.
type DispatchConfig struct {
	MinConfidence float64 `env:"VOICECMD_DISPATCH_MIN_CONFIDENCE"`
	PushToTalk    bool    `env:"VOICECMD_DISPATCH_PUSH_TO_TALK"`
	PTTGraceMS    int     `env:"VOICECMD_DISPATCH_PTT_GRACE_MS"`
	TickMS        int     `env:"VOICECMD_DISPATCH_TICK_MS"`
}

// ReloadConfig bounds grammar reload retries on a busy engine.
type ReloadConfig struct {
	RetryIntervalMS int `env:"VOICECMD_RELOAD_RETRY_INTERVAL_MS"`
	MaxAttempts     int `env:"VOICECMD_RELOAD_MAX_ATTEMPTS"`
}

// GrammarConfig controls language-dependent grammar words.
type GrammarConfig struct {
	Language string `env:"VOICECMD_GRAMMAR_LANGUAGE"`
}

// HealthConfig locates the host's gRPC health endpoint.
type HealthConfig struct {
	Addr   string `env:"VOICECMD_HEALTH_ADDR"`
	PollMS int    `env:"VOICECMD_HEALTH_POLL_MS"`
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string `env:"VOICECMD_AUDIO_INPUT"`
	Fallback string `env:"VOICECMD_AUDIO_FALLBACK"`
}

// IndicatorConfig controls gate-state cues on the consumer side.
type IndicatorConfig struct {
	Sound     bool   `env:"VOICECMD_INDICATOR_SOUND"`
	Desktop   bool   `env:"VOICECMD_INDICATOR_DESKTOP"`
	AppName   string `env:"VOICECMD_INDICATOR_APP_NAME"`
	TimeoutMS int    `env:"VOICECMD_INDICATOR_TIMEOUT_MS"`
}

// LogConfig controls the JSONL runtime log.
type LogConfig struct {
	Level string `env:"VOICECMD_LOG_LEVEL"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
