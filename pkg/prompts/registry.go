// Package prompts owns the template catalog: named prompt templates with
// required context keys, default values, and placeholder substitution.
package prompts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"boxbox/pkg/logging"
)

// Definition is one registry entry. Placeholders is derived from Body at
// registration time and recomputed on every overwrite, so it can never go
// stale against the body text.
type Definition struct {
	Body            string
	RequiredContext []string
	DefaultValues   map[string]string
	Placeholders    []string
}

// HasPlaceholder reports whether name appears as a {name} token in Body.
func (d *Definition) HasPlaceholder(name string) bool {
	for _, p := range d.Placeholders {
		if p == name {
			return true
		}
	}
	return false
}

// Registry maps template names to definitions. Entries can be inserted or
// overwritten at runtime but never removed; a read-write lock keeps
// runtime registration safe alongside serving traffic.
type Registry struct {
	mu     sync.RWMutex
	defs   map[TemplateName]*Definition
	logger zerolog.Logger
}

// NewRegistry builds a registry seeded with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{
		defs:   make(map[TemplateName]*Definition),
		logger: logging.Component("prompts"),
	}
	for _, b := range builtinCatalog {
		if err := r.Register(b.name, b.body, b.required, b.defaults); err != nil {
			// The catalog is static; a bad entry is a programming error.
			panic(fmt.Sprintf("builtin template %q: %v", b.name, err))
		}
	}
	return r
}

// Get returns the definition for name. The returned definition is shared
// and must be treated as read-only.
func (r *Registry) Get(name TemplateName) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return def, nil
}

// Register inserts or overwrites the entry for name. Malformed input
// (empty body, bad placeholder syntax, empty key names) fails with
// InvalidDefinitionError; otherwise registration is permissive.
func (r *Registry) Register(name TemplateName, body string, required []string, defaults map[string]string) error {
	if name == "" {
		return &InvalidDefinitionError{Template: name, Reason: "empty template name"}
	}
	if body == "" {
		return &InvalidDefinitionError{Template: name, Reason: "empty body"}
	}

	placeholders, err := parsePlaceholders(body)
	if err != nil {
		return &InvalidDefinitionError{Template: name, Reason: err.Error()}
	}

	for _, k := range required {
		if k == "" {
			return &InvalidDefinitionError{Template: name, Reason: "empty required key"}
		}
	}
	for k := range defaults {
		if k == "" {
			return &InvalidDefinitionError{Template: name, Reason: "empty default key"}
		}
	}

	def := &Definition{
		Body:            body,
		RequiredContext: append([]string(nil), required...),
		DefaultValues:   make(map[string]string, len(defaults)),
		Placeholders:    placeholders,
	}
	for k, v := range defaults {
		def.DefaultValues[k] = v
	}

	// A required key that never appears in the body is legal (it may be
	// required for business reasons), but worth surfacing to the author.
	for _, k := range required {
		if !def.HasPlaceholder(k) {
			r.logger.Debug().
				Str("template", string(name)).
				Str("key", k).
				Msg("required key does not appear in template body")
		}
	}

	r.mu.Lock()
	r.defs[name] = def
	r.mu.Unlock()

	r.logger.Info().Str("template", string(name)).Msg("template registered")
	return nil
}

// Names lists the registered template names, sorted.
func (r *Registry) Names() []TemplateName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]TemplateName, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
