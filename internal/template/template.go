// Package template implements the {{name}} substitution mini-language used
// by format entries.
//
// A template is literal text interleaved with {{name}} placeholders.
// Placeholders are non-strict: an unknown name expands to the empty string.
// An opening {{ without a matching }} is a malformed template and is
// reported, not swallowed.
package template

import (
	"fmt"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Render expands tmpl against vars. Literal text passes through unchanged;
// {{name}} is replaced by vars[name], or "" when the name is unknown.
// Whitespace around the name inside the delimiters is ignored, so
// {{ topic }} and {{topic}} are equivalent.
func Render(tmpl string, vars map[string]string) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		open := strings.Index(rest, openDelim)
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:open])
		rest = rest[open+len(openDelim):]

		end := strings.Index(rest, closeDelim)
		if end < 0 {
			return "", fmt.Errorf("malformed template %q: unclosed %q", tmpl, openDelim)
		}
		name := strings.TrimSpace(rest[:end])
		b.WriteString(vars[name])
		rest = rest[end+len(closeDelim):]
	}
}

// Vars builds the standard variable set available to every format template.
func Vars(title, topic, body string) map[string]string {
	return map[string]string{
		"title": title,
		"topic": topic,
		"body":  body,
	}
}
