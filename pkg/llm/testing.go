package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// InvokeFunc is the signature of a scripted task handler.
type InvokeFunc func(ctx context.Context, kind TaskKind, prompt string, opts CallOptions, out any) error

// MockCall records one invocation observed by a MockGateway.
type MockCall struct {
	Kind    TaskKind
	Prompt  string
	Options CallOptions
}

// MockGateway is a scripted Gateway for tests. Handlers are looked up by
// task kind, falling back to Default. All invocations are recorded.
type MockGateway struct {
	mu       sync.Mutex
	Handlers map[TaskKind]InvokeFunc
	Default  InvokeFunc
	calls    []MockCall
}

// NewMockGateway creates an empty scripted gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{Handlers: make(map[TaskKind]InvokeFunc)}
}

// Handle registers a handler for one task kind.
func (m *MockGateway) Handle(kind TaskKind, fn InvokeFunc) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Handlers[kind] = fn
	return m
}

// Invoke dispatches to the scripted handler for kind.
func (m *MockGateway) Invoke(ctx context.Context, kind TaskKind, prompt string, opts CallOptions, out any) error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindCancelled, Task: kind, Err: err}
	}
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Kind: kind, Prompt: prompt, Options: opts})
	fn := m.Handlers[kind]
	if fn == nil {
		fn = m.Default
	}
	m.mu.Unlock()
	if fn == nil {
		return &Error{Kind: KindTransport, Task: kind, Err: fmt.Errorf("no handler scripted for %s", kind)}
	}
	return fn(ctx, kind, prompt, opts, out)
}

// Calls returns a copy of the recorded invocations.
func (m *MockGateway) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the recorded invocations of one task kind.
func (m *MockGateway) CallsFor(kind TaskKind) []MockCall {
	var out []MockCall
	for _, call := range m.Calls() {
		if call.Kind == kind {
			out = append(out, call)
		}
	}
	return out
}

// RespondJSON returns a handler that marshals v and decodes it into the
// caller's typed destination, mimicking a well-formed model answer.
func RespondJSON(v any) InvokeFunc {
	return func(_ context.Context, kind TaskKind, _ string, _ CallOptions, out any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return &Error{Kind: KindMalformedOutput, Task: kind, Err: err}
		}
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindMalformedOutput, Task: kind, Err: err}
		}
		return nil
	}
}

// FailWith returns a handler that always fails with the given kind.
func FailWith(kind ErrorKind, msg string) InvokeFunc {
	return func(_ context.Context, task TaskKind, _ string, _ CallOptions, _ any) error {
		return &Error{Kind: kind, Task: task, Err: fmt.Errorf("%s", msg)}
	}
}

// FailNTimes returns a handler that fails with failKind for the first n
// invocations, then delegates to success.
func FailNTimes(n int, failKind ErrorKind, success InvokeFunc) InvokeFunc {
	var mu sync.Mutex
	var count int
	return func(ctx context.Context, kind TaskKind, prompt string, opts CallOptions, out any) error {
		mu.Lock()
		count++
		attempt := count
		mu.Unlock()
		if attempt <= n {
			return &Error{Kind: failKind, Task: kind, Err: fmt.Errorf("scripted failure %d/%d", attempt, n)}
		}
		return success(ctx, kind, prompt, opts, out)
	}
}
