package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Link      *jsoncLink      `json:"link"`
	Dispatch  *jsoncDispatch  `json:"dispatch"`
	Reload    *jsoncReload    `json:"reload"`
	Grammar   *jsoncGrammar   `json:"grammar"`
	Health    *jsoncHealth    `json:"health"`
	Audio     *jsoncAudio     `json:"audio"`
	Indicator *jsoncIndicator `json:"indicator"`
	Bindings  *string         `json:"bindings"`
	Log       *jsoncLog       `json:"log"`
}

type jsoncLink struct {
	Host         *string `json:"host"`
	ConsumerPort *int    `json:"consumer_port"`
	HostPort     *int    `json:"host_port"`
}

type jsoncDispatch struct {
	MinConfidence *float64 `json:"min_confidence"`
	PushToTalk    *bool    `json:"push_to_talk"`
	PTTGraceMS    *int     `json:"ptt_grace_ms"`
	TickMS        *int     `json:"tick_ms"`
}

type jsoncReload struct {
	RetryIntervalMS *int `json:"retry_interval_ms"`
	MaxAttempts     *int `json:"max_attempts"`
}

type jsoncGrammar struct {
	Language *string `json:"language"`
}

type jsoncHealth struct {
	Addr   *string `json:"addr"`
	PollMS *int    `json:"poll_ms"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncIndicator struct {
	Sound     *bool   `json:"sound"`
	Desktop   *bool   `json:"desktop"`
	AppName   *string `json:"app_name"`
	TimeoutMS *int    `json:"timeout_ms"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	return cfg, payload.applyTo(&cfg), nil
}

func (payload jsoncConfig) applyTo(cfg *Config) []Warning {
	warnings := make([]Warning, 0)

	if payload.Link != nil {
		if payload.Link.Host != nil {
			cfg.Link.Host = strings.TrimSpace(*payload.Link.Host)
		}
		if payload.Link.ConsumerPort != nil {
			cfg.Link.ConsumerPort = *payload.Link.ConsumerPort
		}
		if payload.Link.HostPort != nil {
			cfg.Link.HostPort = *payload.Link.HostPort
		}
	}

	if payload.Dispatch != nil {
		if payload.Dispatch.MinConfidence != nil {
			cfg.Dispatch.MinConfidence = *payload.Dispatch.MinConfidence
		}
		if payload.Dispatch.PushToTalk != nil {
			cfg.Dispatch.PushToTalk = *payload.Dispatch.PushToTalk
		}
		if payload.Dispatch.PTTGraceMS != nil {
			cfg.Dispatch.PTTGraceMS = *payload.Dispatch.PTTGraceMS
		}
		if payload.Dispatch.TickMS != nil {
			cfg.Dispatch.TickMS = *payload.Dispatch.TickMS
		}
	}

	if payload.Reload != nil {
		if payload.Reload.RetryIntervalMS != nil {
			cfg.Reload.RetryIntervalMS = *payload.Reload.RetryIntervalMS
		}
		if payload.Reload.MaxAttempts != nil {
			cfg.Reload.MaxAttempts = *payload.Reload.MaxAttempts
		}
	}

	if payload.Grammar != nil && payload.Grammar.Language != nil {
		cfg.Grammar.Language = strings.TrimSpace(*payload.Grammar.Language)
	}

	if payload.Health != nil {
		if payload.Health.Addr != nil {
			cfg.Health.Addr = strings.TrimSpace(*payload.Health.Addr)
		}
		if payload.Health.PollMS != nil {
			cfg.Health.PollMS = *payload.Health.PollMS
		}
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
	}

	if ind := payload.Indicator; ind != nil {
		if ind.Sound != nil {
			cfg.Indicator.Sound = *ind.Sound
		}
		if ind.Desktop != nil {
			cfg.Indicator.Desktop = *ind.Desktop
		}
		if ind.AppName != nil {
			cfg.Indicator.AppName = strings.TrimSpace(*ind.AppName)
		}
		if ind.TimeoutMS != nil {
			cfg.Indicator.TimeoutMS = *ind.TimeoutMS
		}
	}

	if payload.Bindings != nil {
		cfg.Bindings = strings.TrimSpace(*payload.Bindings)
	}

	if payload.Log != nil && payload.Log.Level != nil {
		level := strings.ToLower(strings.TrimSpace(*payload.Log.Level))
		if level == "warning" {
			warnings = append(warnings, Warning{Message: `log.level "warning" is spelled "warn"; using warn`})
			level = "warn"
		}
		cfg.Log.Level = level
	}

	return warnings
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
