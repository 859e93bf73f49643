package format

import (
	"fmt"
	"strings"
)

// Urgency is a notification urgency level as understood by the
// org.freedesktop.Notifications service.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Level returns the byte value used in the "urgency" notification hint
// (0=low, 1=normal, 2=critical per the freedesktop notification spec).
func (u Urgency) Level() byte {
	switch u {
	case UrgencyLow:
		return 0
	case UrgencyCritical:
		return 2
	default:
		return 1
	}
}

func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return UrgencyLow, nil
	case "", "normal":
		return UrgencyNormal, nil
	case "critical":
		return UrgencyCritical, nil
	default:
		return UrgencyNormal, fmt.Errorf("unknown urgency %q (want low, normal or critical)", s)
	}
}

// Entry is the set of template/behavior fields attached to one topic pattern.
//
// All fields are tri-state: a nil pointer means "not set here", and the field
// falls through to the base entry during Merge. A non-nil pointer always wins,
// even when it points at a zero value (an explicit muted:false overrides a
// muted:true base).
type Entry struct {
	Title    *string
	Body     *string
	Icon     *string
	Urgency  *Urgency
	Muted    *bool
	Timeout  *float64 // seconds
	Category *string
}

// IsZero reports whether no field is set.
func (e Entry) IsZero() bool {
	return e.Title == nil && e.Body == nil && e.Icon == nil &&
		e.Urgency == nil && e.Muted == nil && e.Timeout == nil && e.Category == nil
}

// GetTitle returns the title template, or "" when unset.
func (e Entry) GetTitle() string { return strOr(e.Title, "") }

// GetBody returns the body template, or "" when unset.
func (e Entry) GetBody() string { return strOr(e.Body, "") }

// GetIcon returns the icon template, or "" when unset.
func (e Entry) GetIcon() string { return strOr(e.Icon, "") }

// GetUrgency returns the urgency, defaulting to normal when unset.
func (e Entry) GetUrgency() Urgency {
	if e.Urgency != nil {
		return *e.Urgency
	}
	return UrgencyNormal
}

// GetMuted reports whether the entry is muted. Unset means false.
func (e Entry) GetMuted() bool { return e.Muted != nil && *e.Muted }

// GetTimeout returns the notification timeout in seconds, or def when unset.
func (e Entry) GetTimeout(def float64) float64 {
	if e.Timeout != nil {
		return *e.Timeout
	}
	return def
}

// Merge layers override on top of base field by field. Fields the override
// sets explicitly win; unset fields fall through to base. Neither input is
// modified. Merge(base, Merge(base, e)) == Merge(base, e).
func Merge(base, override Entry) Entry {
	out := base
	if override.Title != nil {
		out.Title = override.Title
	}
	if override.Body != nil {
		out.Body = override.Body
	}
	if override.Icon != nil {
		out.Icon = override.Icon
	}
	if override.Urgency != nil {
		out.Urgency = override.Urgency
	}
	if override.Muted != nil {
		out.Muted = override.Muted
	}
	if override.Timeout != nil {
		out.Timeout = override.Timeout
	}
	if override.Category != nil {
		out.Category = override.Category
	}
	return out
}

// Default returns the base entry every resolved format is merged onto.
// timeoutSec is the configured default notification duration in seconds.
// Category stays unset: absent means "send no category hint".
func Default(timeoutSec float64) Entry {
	return Entry{
		Title:   Ptr("{{title}}"),
		Body:    Ptr("{{body}}"),
		Icon:    Ptr(""),
		Urgency: Ptr(UrgencyNormal),
		Muted:   Ptr(false),
		Timeout: Ptr(timeoutSec),
	}
}

// Ptr is a convenience for building tri-state entries.
func Ptr[T any](v T) *T { return &v }

func strOr(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}
