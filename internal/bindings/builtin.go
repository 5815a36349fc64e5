package bindings

import (
	"context"

	"github.com/rbright/voicecmd/internal/registry"
)

const (
	BuiltinNamespace     = "voicecmd"
	ToggleListeningID    = "toggleListening"
	toggleListeningLabel = "Toggle listening"
)

// RegisterBuiltin adds the voicecmd namespace. Its listening toggle always
// executes so it can turn listening back on.
func RegisterBuiltin(r *registry.Registry, toggle func() bool) error {
	if _, err := r.AddNamespace(BuiltinNamespace, "Voice Commander"); err != nil {
		return err
	}
	return r.AddCommand(BuiltinNamespace, registry.Command{
		ID:            ToggleListeningID,
		Label:         toggleListeningLabel,
		Phrases:       []string{"toggle listening"},
		ExecuteAlways: true,
		Handler: registry.HandlerFunc(func(context.Context, registry.Event) error {
			toggle()
			return nil
		}),
	})
}

// Preview builds a registry holding the built-in namespace and file, with
// handlers that are never meant to run. It backs offline compilation.
func Preview(file File) (*registry.Registry, error) {
	r := registry.New()
	if err := RegisterBuiltin(r, func() bool { return true }); err != nil {
		return nil, err
	}
	if err := NewModule(file, nil, nil).Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
