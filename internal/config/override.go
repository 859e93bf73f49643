package config

import (
	"fmt"
	"strings"
)

// ParseTopicOverride parses one -topic flag value of the form
// PATTERN[=BODY[=TITLE]]. The positional order (body before title) follows
// the original CLI. Flag-declared formats are appended after config-declared
// ones, so a config pattern matching the same topics keeps priority.
func ParseTopicOverride(raw string) (NamedFormat, error) {
	parts := strings.SplitN(raw, "=", 3)
	pattern := strings.TrimSpace(parts[0])
	if pattern == "" {
		return NamedFormat{}, fmt.Errorf("topic override %q: empty topic filter", raw)
	}
	nf := NamedFormat{Pattern: pattern}
	if len(parts) > 1 {
		nf.Entry.Body = &parts[1]
	}
	if len(parts) > 2 {
		nf.Entry.Title = &parts[2]
	}
	return nf, nil
}
