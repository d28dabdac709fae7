// Package generator orchestrates prompt rendering, model invocation, and
// the deterministic template fallback.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"boxbox/pkg/logging"
	"boxbox/pkg/prompts"
)

// ModelClient is the external text-generation capability. Complete renders
// up to n candidate continuations for prompt; implementations may fail on
// infrastructure problems (network, rate limits, timeouts).
type ModelClient interface {
	Complete(ctx context.Context, prompt string, maxTokens, n int) ([]string, error)
}

// Options tune a single engine. Zero values are replaced with defaults by
// New; EnableFallback defaults to on via DefaultOptions.
type Options struct {
	MaxLength          int
	NumReturnSequences int
	EnableFallback     bool
}

func DefaultOptions() Options {
	return Options{
		MaxLength:          128,
		NumReturnSequences: 1,
		EnableFallback:     true,
	}
}

// GenerationError is the single error kind Generate surfaces. It wraps
// the original cause, so callers separate malformed requests from
// infrastructure failures with errors.Is/errors.As on the cause chain.
type GenerationError struct {
	Template prompts.TemplateName
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %q: %v", string(e.Template), e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Engine produces agent-voice text for a template, preferring the model
// and falling back to the rendered template text when the model is
// unavailable. Each Generate call is independent; the engine holds no
// per-call state.
type Engine struct {
	renderer *prompts.Renderer
	model    ModelClient
	opts     Options
	logger   zerolog.Logger
}

func New(renderer *prompts.Renderer, model ModelClient, opts Options) *Engine {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultOptions().MaxLength
	}
	if opts.NumReturnSequences <= 0 {
		opts.NumReturnSequences = DefaultOptions().NumReturnSequences
	}
	return &Engine{
		renderer: renderer,
		model:    model,
		opts:     opts,
		logger:   logging.Component("generator"),
	}
}

// Generate renders the template into a prompt, invokes the model, and
// returns the first candidate. Render failures mean the request itself is
// malformed and propagate immediately, never into fallback. Any model
// failure, including a context deadline, triggers the fallback when it is
// enabled; otherwise the cause is wrapped and returned.
func (e *Engine) Generate(ctx context.Context, name prompts.TemplateName, templateContext map[string]string) (string, error) {
	prompt, err := e.renderer.Format(name, templateContext)
	if err != nil {
		return "", &GenerationError{Template: name, Cause: err}
	}

	e.logger.Info().Str("template", string(name)).Msg("invoking model")

	candidates, err := e.model.Complete(ctx, prompt, e.opts.MaxLength, e.opts.NumReturnSequences)
	if err == nil && len(candidates) == 0 {
		err = errors.New("model returned no candidates")
	}
	if err == nil {
		e.logger.Info().Str("template", string(name)).Msg("model invocation succeeded")
		return candidates[0], nil
	}

	if !e.opts.EnableFallback {
		e.logger.Error().Err(err).Str("template", string(name)).Msg("model invocation failed")
		return "", &GenerationError{Template: name, Cause: err}
	}

	e.logger.Warn().Err(err).Str("template", string(name)).Msg("model invocation failed, using template fallback")

	// Rendering is pure and the registry entry cannot have been removed,
	// so this re-render matches the prompt rendered above.
	fallback, renderErr := e.renderer.Format(name, templateContext)
	if renderErr != nil {
		return "", &GenerationError{Template: name, Cause: renderErr}
	}
	return fallback, nil
}
