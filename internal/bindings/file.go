// Package bindings loads the consumer's YAML command bindings and registers
// them as registry namespaces whose handlers run external commands.
package bindings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rbright/voicecmd/internal/grammar"
	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/vocab"
)

// File is the bindings document.
type File struct {
	Namespaces []NamespaceSpec    `yaml:"namespaces"`
	Texts      map[string]string `yaml:"texts"`
}

// NamespaceSpec declares one namespace.
type NamespaceSpec struct {
	ID       string        `yaml:"id"`
	Label    string        `yaml:"label"`
	Commands []CommandSpec `yaml:"commands"`
	Macros   []MacroSpec   `yaml:"macros"`
}

// CommandSpec declares one command. Run is a shell-like argv with {param}
// placeholders; {param:text} expands a dynamic macro index to its text.
type CommandSpec struct {
	ID            string   `yaml:"id"`
	Label         string   `yaml:"label"`
	Phrases       []string `yaml:"phrases"`
	Run           string   `yaml:"run"`
	ExecuteAlways bool     `yaml:"execute_always"`
	TimeoutMS     int      `yaml:"timeout_ms"`
}

// MacroSpec declares a static macro value set.
type MacroSpec struct {
	ID     string   `yaml:"id"`
	Values []string `yaml:"values"`
}

// Load reads and validates a bindings file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read bindings %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("bindings %s: %w", path, err)
	}
	return file, nil
}

// Parse decodes a bindings document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := file.Validate(); err != nil {
		return File{}, err
	}
	return file, nil
}

// Validate checks ids, phrases, run lines, and text slots.
func (f File) Validate() error {
	var errs []error

	namespaces := map[string]bool{}
	for i, ns := range f.Namespaces {
		where := fmt.Sprintf("namespaces[%d]", i)
		if err := checkID(ns.ID); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		} else if namespaces[ns.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate namespace %q", where, ns.ID))
		}
		namespaces[ns.ID] = true

		commands := map[string]bool{}
		for j, cmd := range ns.Commands {
			where := fmt.Sprintf("%s.commands[%d]", where, j)
			if err := checkID(cmd.ID); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			} else if commands[cmd.ID] {
				errs = append(errs, fmt.Errorf("%s: duplicate command %q", where, cmd.ID))
			}
			commands[cmd.ID] = true

			if len(cmd.Phrases) == 0 {
				errs = append(errs, fmt.Errorf("%s: at least one phrase is required", where))
			}
			for _, phrase := range cmd.Phrases {
				if _, err := grammar.Parse(phrase); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", where, err))
				}
			}
			if _, err := parseArgv(cmd.Run); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
			if cmd.TimeoutMS < 0 {
				errs = append(errs, fmt.Errorf("%s: timeout_ms must be >= 0", where))
			}
		}

		for j, macro := range ns.Macros {
			where := fmt.Sprintf("%s.macros[%d]", where, j)
			if err := checkID(macro.ID); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
			for k, value := range macro.Values {
				if strings.TrimSpace(value) == "" {
					errs = append(errs, fmt.Errorf("%s.values[%d]: value is empty", where, k))
				}
			}
		}
	}

	for key := range f.Texts {
		if !vocab.Slot(key).Valid() {
			errs = append(errs, fmt.Errorf("texts: unknown slot %q", key))
		}
	}

	return errors.Join(errs...)
}

func checkID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errors.New("id is required")
	case strings.ContainsAny(id, packet.IDSeparator+packet.Separator):
		return fmt.Errorf("id %q must not contain %q or %q", id, packet.IDSeparator, packet.Separator)
	default:
		return nil
	}
}
