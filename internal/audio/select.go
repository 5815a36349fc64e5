package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Choice is the source recognition should use.
type Choice struct {
	Source   Source
	Note     string
	FellBack bool
}

// Select lists sources and applies Choose.
func Select(ctx context.Context, lister Lister, input, fallback string) (Choice, error) {
	if lister == nil {
		lister = PulseLister{}
	}
	sources, err := lister.Sources(ctx)
	if err != nil {
		return Choice{}, err
	}
	return Choose(sources, input, fallback)
}

// Choose picks input when it is usable and otherwise fallback. "default" or
// an empty term means the server's default source; any other term matches a
// source name or description, case-insensitively.
func Choose(sources []Source, input, fallback string) (Choice, error) {
	if len(sources) == 0 {
		return Choice{}, errors.New("no audio input sources found")
	}

	primary, err := find(sources, input)
	if err != nil {
		return Choice{}, fmt.Errorf("audio.input: %w", err)
	}
	if primary.Usable() {
		return Choice{Source: primary}, nil
	}

	reason := condition(primary)
	alternate, err := find(sources, fallback)
	if err != nil {
		return Choice{}, fmt.Errorf("audio.input %q is %s and audio.fallback: %w", primary.Name, reason, err)
	}
	if !alternate.Usable() {
		return Choice{}, fmt.Errorf("audio.input %q is %s and audio.fallback %q is %s",
			primary.Name, reason, alternate.Name, condition(alternate))
	}

	return Choice{
		Source:   alternate,
		Note:     fmt.Sprintf("audio.input %q is %s; using %q", primary.Name, reason, alternate.Name),
		FellBack: alternate.Name != primary.Name,
	}, nil
}

func find(sources []Source, term string) (Source, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || term == "default" {
		for _, s := range sources {
			if s.Default {
				return s, nil
			}
		}
		return Source{}, errors.New("default source is unavailable")
	}
	for _, s := range sources {
		if strings.Contains(strings.ToLower(s.Name), term) ||
			strings.Contains(strings.ToLower(s.Description), term) {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("%q matched no source", term)
}

func condition(s Source) string {
	if s.Muted {
		return "muted"
	}
	return "unavailable"
}
