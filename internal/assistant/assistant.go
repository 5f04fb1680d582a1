// internal/assistant/assistant.go
//
// Remote text generation used by the chat widget and the guessing game.
// Responsibilities:
//   - Generator: the one call signature the rest of the server depends on.
//   - Responder: bounds each call with a timeout and converts every failure
//     into a fixed, context-appropriate string so callers never see an error.
//
// Notes:
//   - No retries. The user re-submits.

package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 15 * time.Second

// Request is one generation call.
type Request struct {
	Prompt        string
	SystemContext string
	MaxTokens     int
}

// Generator produces text for a request.
// Errors are one of ErrConfigMissing, ErrNetwork, ErrAuth, ErrEmptyResponse
// (possibly wrapped).
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Fallbacks are the user-visible strings substituted for failures.
type Fallbacks struct {
	ConfigMissing string
	Failure       string
	Empty         string
}

var (
	// ChatFallbacks are used by the persistent assistant widget.
	ChatFallbacks = Fallbacks{
		ConfigMissing: "Error: API Key missing. Please check configuration.",
		Failure:       "Connection interrupted.",
		Empty:         "Try again.",
	}

	// GameFallbacks are used by the fairy guessing game.
	GameFallbacks = Fallbacks{
		ConfigMissing: "API Key missing.",
		Failure:       "Magic wand out of battery!",
		Empty:         "*Poof* Something went wrong!",
	}
)

// Responder wraps a Generator with a deadline and fallback text.
type Responder struct {
	gen       Generator
	timeout   time.Duration
	fallbacks Fallbacks
	label     string
}

// NewResponder builds a Responder. A non-positive timeout uses DefaultTimeout.
// label only tags log lines.
func NewResponder(gen Generator, timeout time.Duration, fb Fallbacks, label string) *Responder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Responder{gen: gen, timeout: timeout, fallbacks: fb, label: label}
}

type result struct {
	text string
	err  error
}

// Reply runs the request and always returns displayable text.
// The deadline holds even if the Generator ignores ctx.
func (r *Responder) Reply(ctx context.Context, req Request) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := r.gen.Generate(ctx, req)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: errors.Join(ErrNetwork, ctx.Err())}
	}

	switch {
	case res.err == nil && res.text != "":
		return res.text
	case res.err == nil, errors.Is(res.err, ErrEmptyResponse):
		log.Warn().Str("caller", r.label).Msg("assistant returned no text")
		return r.fallbacks.Empty
	case errors.Is(res.err, ErrConfigMissing):
		log.Warn().Str("caller", r.label).Msg("assistant api key missing")
		return r.fallbacks.ConfigMissing
	default:
		log.Error().Err(res.err).Str("caller", r.label).Msg("assistant call failed")
		return r.fallbacks.Failure
	}
}
