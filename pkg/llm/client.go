// Package llm is the typed gateway to the model vendor. It exposes a single
// Invoke operation over a closed task-kind catalogue, handles retries with
// exponential backoff and jitter, coerces fenced JSON output, and honours
// context cancellation at every network suspension point.
package llm

import (
	"context"
	"time"
)

// Default invocation settings.
const (
	DefaultTimeout    = 300 * time.Second
	DefaultMaxRetries = 2
	DefaultMaxTokens  = 16384
)

// UseTaskTemperature signals that the catalogue's per-kind default
// temperature applies.
const UseTaskTemperature = -1.0

// CallOptions tunes a single gateway invocation.
type CallOptions struct {
	// Temperature in [0,1]; UseTaskTemperature selects the task default.
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	// MaxRetries is the number of retries after the first attempt. On the
	// final retry the temperature is forced to 0.0.
	MaxRetries int
}

// DefaultOptions returns the gateway's standard invocation settings.
func DefaultOptions() CallOptions {
	return CallOptions{
		Temperature: UseTaskTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
	}
}

// WithTemperature returns a copy of o with the temperature overridden.
func (o CallOptions) WithTemperature(t float64) CallOptions {
	o.Temperature = t
	return o
}

// WithMaxRetries returns a copy of o with the retry budget overridden.
func (o CallOptions) WithMaxRetries(n int) CallOptions {
	o.MaxRetries = n
	return o
}

// Gateway is the single typed-call abstraction over the model vendor.
// Invoke runs the task-kind's prompt contract and unmarshals the validated
// JSON result into out, which must be a pointer to the kind's declared
// output type. Failures are *Error values carrying an ErrorKind.
type Gateway interface {
	Invoke(ctx context.Context, kind TaskKind, prompt string, opts CallOptions, out any) error
}
