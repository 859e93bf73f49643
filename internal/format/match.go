package format

import (
	"fmt"
	"strings"
)

// Matches reports whether topic matches filter under MQTT wildcard rules:
// '+' matches exactly one level, '#' (final level only) matches the level it
// sits on and everything below it, and matching is anchored to the whole
// topic. Filters starting with a wildcard never match '$'-prefixed topics
// ($SYS and friends must be subscribed to explicitly).
func Matches(filter, topic string) bool {
	if filter == "" || topic == "" {
		return false
	}
	if filter == topic {
		return true
	}

	fl := strings.Split(filter, "/")
	tl := strings.Split(topic, "/")

	if strings.HasPrefix(topic, "$") && (fl[0] == "+" || fl[0] == "#") {
		return false
	}

	for i, f := range fl {
		if f == "#" {
			// Matches the parent level and any number of trailing levels.
			return true
		}
		if i >= len(tl) {
			// Filter has more levels than the topic (and no '#').
			return false
		}
		if f == "+" {
			continue
		}
		if f != tl[i] {
			return false
		}
	}

	// No '#' consumed the tail, so level counts must agree exactly.
	return len(fl) == len(tl)
}

// ValidateFilter rejects filters that are not valid MQTT topic filters:
// '#' must be the final level and stand alone, '+' must stand alone in its
// level.
func ValidateFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("empty topic filter")
	}
	levels := strings.Split(filter, "/")
	for i, lv := range levels {
		if strings.Contains(lv, "#") {
			if lv != "#" {
				return fmt.Errorf("topic filter %q: '#' must occupy a whole level", filter)
			}
			if i != len(levels)-1 {
				return fmt.Errorf("topic filter %q: '#' must be the last level", filter)
			}
		}
		if strings.Contains(lv, "+") && lv != "+" {
			return fmt.Errorf("topic filter %q: '+' must occupy a whole level", filter)
		}
	}
	return nil
}
