package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when a template name has no registry entry.
type NotFoundError struct {
	Name TemplateName
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not registered", string(e.Name))
}

// MissingKeysError reports context keys a template needs but the merged
// context does not supply. It covers both declared required keys and keys
// discovered in the body during substitution.
type MissingKeysError struct {
	Template TemplateName
	Keys     []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("template %q: missing context keys: %s",
		string(e.Template), strings.Join(e.Keys, ", "))
}

// InvalidDefinitionError is returned by Register for malformed inputs
// (empty body, bad placeholder syntax, empty key names).
type InvalidDefinitionError struct {
	Template TemplateName
	Reason   string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("template %q: invalid definition: %s", string(e.Template), e.Reason)
}

// IsValidationError reports whether err (or anything it wraps) is a
// template/context validation failure rather than an infrastructure one.
func IsValidationError(err error) bool {
	var nf *NotFoundError
	var mk *MissingKeysError
	var id *InvalidDefinitionError
	return errors.As(err, &nf) || errors.As(err, &mk) || errors.As(err, &id)
}
