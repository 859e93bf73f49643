package format

// Pattern pairs a topic filter with the entry it declares.
type Pattern struct {
	Filter string
	Entry  Entry
}

// Registry resolves topics to format entries.
//
// Resolution walks the patterns in declaration order and returns the first
// whose filter matches. This is deliberate: declaration order is the match
// priority, not specificity, so a broad "sensors/#" declared before
// "sensors/door" shadows it. Registries are immutable once built.
type Registry struct {
	patterns []Pattern
}

// NewRegistry builds a registry from patterns in declaration order.
// Filters are validated; the first invalid one fails the whole build.
func NewRegistry(patterns []Pattern) (*Registry, error) {
	for _, p := range patterns {
		if err := ValidateFilter(p.Filter); err != nil {
			return nil, err
		}
	}
	cp := make([]Pattern, len(patterns))
	copy(cp, patterns)
	return &Registry{patterns: cp}, nil
}

// Resolve returns the first matching entry in declaration order.
// The second return is false when no pattern matches; the caller decides
// how loud to be about it (an unmatched topic is an allowed condition, a
// message can arrive on a subscribed wildcard with no specific override).
func (r *Registry) Resolve(topic string) (Entry, bool) {
	for _, p := range r.patterns {
		if Matches(p.Filter, topic) {
			return p.Entry, true
		}
	}
	return Entry{}, false
}

// Filters returns the distinct topic filters in declaration order. These
// double as the broker subscription list.
func (r *Registry) Filters() []string {
	seen := make(map[string]struct{}, len(r.patterns))
	out := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		if _, dup := seen[p.Filter]; dup {
			continue
		}
		seen[p.Filter] = struct{}{}
		out = append(out, p.Filter)
	}
	return out
}

// Len returns the number of declared patterns.
func (r *Registry) Len() int { return len(r.patterns) }
