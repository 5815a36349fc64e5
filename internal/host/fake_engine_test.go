package host

import (
	"context"
	"sync"
)

type fakeEngine struct {
	mu sync.Mutex

	busyLoads int
	loadErr   error
	calls     []string
	loaded    []Binding
	results   chan Recognition
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{results: make(chan Recognition, 4)}
}

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeEngine) Stop(context.Context) error {
	f.record("stop")
	return nil
}

func (f *fakeEngine) UnloadAll(context.Context) error {
	f.record("unload")
	f.mu.Lock()
	f.loaded = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Load(_ context.Context, bindings []Binding) error {
	f.record("load")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	if f.busyLoads > 0 {
		f.busyLoads--
		return ErrBusy
	}
	f.loaded = append([]Binding(nil), bindings...)
	return nil
}

func (f *fakeEngine) Start(context.Context) error {
	f.record("start")
	return nil
}

func (f *fakeEngine) Recognitions() <-chan Recognition {
	return f.results
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeEngine) Loaded() []Binding {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Binding(nil), f.loaded...)
}

type fakeStatus struct {
	mu      sync.Mutex
	history []bool
}

func (f *fakeStatus) SetServing(serving bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, serving)
}

func (f *fakeStatus) History() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.history...)
}
