package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Link: LinkConfig{
			Host:         "127.0.0.1",
			ConsumerPort: 48285,
			HostPort:     48286,
		},
		Dispatch: DispatchConfig{
			MinConfidence: 0.6,
			PushToTalk:    false,
			PTTGraceMS:    1500,
			TickMS:        50,
		},
		Reload: ReloadConfig{
			RetryIntervalMS: 100,
			MaxAttempts:     0,
		},
		Grammar: GrammarConfig{Language: "en-US"},
		Health: HealthConfig{
			Addr:   "127.0.0.1:48287",
			PollMS: 2000,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Indicator: IndicatorConfig{
			Sound:     false,
			Desktop:   false,
			AppName:   "voicecmd",
			TimeoutMS: 2000,
		},
		Log: LogConfig{Level: "info"},
	}
}
