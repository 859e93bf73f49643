// Package message extracts notification title/body candidates from raw
// broker payloads.
package message

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Parsed is one inbound message reduced to the fields the rendering
// pipeline cares about.
type Parsed struct {
	Topic  string
	Raw    string // payload after lossy UTF-8 decoding
	Title  string
	Body   string
	IsJSON bool // payload decoded as a JSON object
}

// Parse derives title/body candidates from a raw payload. It never fails:
// invalid UTF-8 is dropped rather than rejected, and anything that is not a
// JSON object degrades to title=topic, body=text.
//
// For JSON objects, "title" and "message" keys supply title and body, with
// title falling back to the topic and body falling back to a compact JSON
// rendering of the whole object.
func Parse(topic string, payload []byte) Parsed {
	text := strings.ToValidUTF8(string(payload), "")

	p := Parsed{Topic: topic, Raw: text, Title: topic, Body: text}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return p
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return p
	}

	p.IsJSON = true
	if t, ok := obj["title"]; ok {
		p.Title = stringify(t)
	}
	if m, ok := obj["message"]; ok {
		p.Body = stringify(m)
	} else {
		p.Body = compactJSON(obj, text)
	}
	return p
}

// stringify renders a decoded JSON value for use in a notification. Strings
// pass through unquoted; everything else is re-encoded as JSON.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func compactJSON(obj map[string]any, fallback string) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return fallback
	}
	return string(b)
}
