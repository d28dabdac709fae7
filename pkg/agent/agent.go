// Package agent implements the F1 driver persona: situational context,
// template-driven speech, and simulated social actions.
package agent

import (
	"context"

	"github.com/rs/zerolog"

	"boxbox/pkg/logging"
	"boxbox/pkg/prompts"
)

// TextGenerator abstracts the generation engine for testing.
type TextGenerator interface {
	Generate(ctx context.Context, name prompts.TemplateName, templateContext map[string]string) (string, error)
}

// Agent ties context management, text generation, and social actions
// together. Think updates what the driver knows, Speak renders it into a
// post, Act performs a simulated interaction.
type Agent struct {
	contexts  *ContextManager
	actions   *SocialActions
	generator TextGenerator
	logger    zerolog.Logger
}

func New(generator TextGenerator) *Agent {
	return &Agent{
		contexts:  NewContextManager(),
		actions:   NewSocialActions(),
		generator: generator,
		logger:    logging.Component("agent"),
	}
}

// Think merges new information into the agent's situation.
func (a *Agent) Think(fields map[string]string) (Situation, error) {
	a.logger.Info().Interface("fields", fields).Msg("updating situation")
	return a.contexts.Update(fields)
}

// Situation returns a copy of the agent's current situation.
func (a *Agent) Situation() Situation {
	return a.contexts.Snapshot()
}

// Speak generates text for a template from the agent's situation plus
// per-call extras. Extras win over the stored situation; the merged map
// is built fresh per call, so concurrent Think calls cannot mutate a
// generation in flight.
func (a *Agent) Speak(ctx context.Context, name prompts.TemplateName, extra map[string]string) (string, error) {
	merged := a.contexts.ContextMap()
	for k, v := range extra {
		merged[k] = v
	}

	a.logger.Info().
		Str("template", string(name)).
		Interface("context", merged).
		Msg("speaking")

	text, err := a.generator.Generate(ctx, name, merged)
	if err != nil {
		a.logger.Error().Err(err).Str("template", string(name)).Msg("speak failed")
		return "", err
	}
	return text, nil
}

// Act performs a simulated social action.
func (a *Agent) Act(kind ActionKind, data map[string]string) (ActionResult, error) {
	result, err := a.actions.Perform(kind, data)
	if err != nil {
		a.logger.Error().Err(err).Str("kind", string(kind)).Msg("action failed")
		return ActionResult{}, err
	}
	return result, nil
}
