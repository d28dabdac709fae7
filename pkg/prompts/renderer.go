package prompts

import (
	"sort"

	"github.com/rs/zerolog"

	"boxbox/pkg/logging"
)

// Renderer turns (template name, caller context) into a final string.
// Rendering is pure: same registry contents and same context always
// produce the same output.
type Renderer struct {
	registry *Registry
	logger   zerolog.Logger
}

func NewRenderer(registry *Registry) *Renderer {
	return &Renderer{
		registry: registry,
		logger:   logging.Component("renderer"),
	}
}

// Format resolves the template, merges defaults under the caller's
// context, validates required keys up front, then substitutes. Extra
// context keys are logged but never fatal. Substitution is all-or-nothing:
// a body key absent from the merged context fails with MissingKeysError,
// the same kind as the up-front check, so callers see one error contract.
func (r *Renderer) Format(name TemplateName, context map[string]string) (string, error) {
	def, err := r.registry.Get(name)
	if err != nil {
		return "", err
	}

	// Shallow merge, caller keys win over defaults. The caller's map is
	// never mutated.
	merged := make(map[string]string, len(def.DefaultValues)+len(context))
	for k, v := range def.DefaultValues {
		merged[k] = v
	}
	for k, v := range context {
		merged[k] = v
	}

	// Required keys are checked before formatting, whether or not the
	// body actually uses them.
	var missing []string
	for _, k := range def.RequiredContext {
		if _, ok := merged[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		err := &MissingKeysError{Template: name, Keys: missing}
		r.logger.Error().
			Str("template", string(name)).
			Strs("missing", missing).
			Msg("context validation failed")
		return "", err
	}

	if extra := r.extraKeys(def, merged); len(extra) > 0 {
		r.logger.Warn().
			Str("template", string(name)).
			Strs("extra", extra).
			Msg("context keys not used by template")
	}

	out, bodyMissing, err := substitute(def.Body, merged)
	if err != nil {
		// Bodies are validated at registration, so a scan error here
		// means the definition was corrupted.
		return "", &InvalidDefinitionError{Template: name, Reason: err.Error()}
	}
	if len(bodyMissing) > 0 {
		sort.Strings(bodyMissing)
		r.logger.Error().
			Str("template", string(name)).
			Strs("missing", bodyMissing).
			Msg("template body references keys absent from context")
		return "", &MissingKeysError{Template: name, Keys: bodyMissing}
	}

	return out, nil
}

// extraKeys returns merged keys outside required ∪ placeholders, sorted.
func (r *Renderer) extraKeys(def *Definition, merged map[string]string) []string {
	known := make(map[string]struct{}, len(def.RequiredContext)+len(def.Placeholders))
	for _, k := range def.RequiredContext {
		known[k] = struct{}{}
	}
	for _, k := range def.Placeholders {
		known[k] = struct{}{}
	}

	var extra []string
	for k := range merged {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}
