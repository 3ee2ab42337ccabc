package adb

import (
	"context"
	"strings"
	"sync"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  []string
	out    map[string][]byte
	failOn string
	err    error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{out: map[string][]byte{}}
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	line := strings.Join(args, " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)

	if f.failOn != "" && strings.Contains(line, f.failOn) {
		return nil, f.err
	}
	for prefix, out := range f.out {
		if strings.Contains(line, prefix) {
			return out, nil
		}
	}
	return nil, nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
