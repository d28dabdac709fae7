package prompts

import (
	"fmt"
	"strings"
)

// scanBody walks a template body byte by byte, invoking lit for literal
// runs and key for each {name} placeholder. Brace escaping follows
// str.format rules: "{{" and "}}" produce literal braces.
func scanBody(body string, lit func(string), key func(string)) error {
	for i := 0; i < len(body); {
		switch body[i] {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				lit("{")
				i += 2
				continue
			}
			end := strings.IndexByte(body[i+1:], '}')
			if end < 0 {
				return fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			name := body[i+1 : i+1+end]
			if name == "" {
				return fmt.Errorf("empty placeholder at offset %d", i)
			}
			// Format specs ("{count:>5}") and conversions ("{x!r}")
			// are not supported, so ':' and '!' are rejected rather
			// than silently folded into an unsatisfiable name.
			if strings.ContainsAny(name, "{:! \t\r\n") {
				return fmt.Errorf("invalid placeholder %q", name)
			}
			key(name)
			i += end + 2
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				lit("}")
				i += 2
				continue
			}
			return fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			j := i
			for j < len(body) && body[j] != '{' && body[j] != '}' {
				j++
			}
			lit(body[i:j])
			i = j
		}
	}
	return nil
}

// parsePlaceholders extracts the unique placeholder names in body, in
// order of first appearance.
func parsePlaceholders(body string) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})
	err := scanBody(body, func(string) {}, func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// substitute renders body with values. It is all-or-nothing: if any
// placeholder has no value, the missing names are returned and the
// rendered text is discarded.
func substitute(body string, values map[string]string) (string, []string, error) {
	var b strings.Builder
	var missing []string
	seenMissing := make(map[string]struct{})

	err := scanBody(body, func(lit string) {
		b.WriteString(lit)
	}, func(name string) {
		v, ok := values[name]
		if !ok {
			if _, dup := seenMissing[name]; !dup {
				seenMissing[name] = struct{}{}
				missing = append(missing, name)
			}
			return
		}
		b.WriteString(v)
	})
	if err != nil {
		return "", nil, err
	}
	if len(missing) > 0 {
		return "", missing, nil
	}
	return b.String(), nil, nil
}
