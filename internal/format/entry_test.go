package format

import (
	"reflect"
	"testing"
)

func TestMergeFieldwise(t *testing.T) {
	t.Parallel()
	base := Default(5)
	override := Entry{
		Title:   Ptr("Temp: {{topic}}"),
		Urgency: Ptr(UrgencyCritical),
		Timeout: Ptr(10.0),
	}

	got := Merge(base, override)

	if got.GetTitle() != "Temp: {{topic}}" {
		t.Errorf("Title = %q, want override", got.GetTitle())
	}
	if got.GetBody() != "{{body}}" {
		t.Errorf("Body = %q, want base default", got.GetBody())
	}
	if got.GetUrgency() != UrgencyCritical {
		t.Errorf("Urgency = %q, want critical", got.GetUrgency())
	}
	if got.GetTimeout(0) != 10 {
		t.Errorf("Timeout = %v, want 10", got.GetTimeout(0))
	}
	if got.GetMuted() {
		t.Error("Muted = true, want base default false")
	}
	if got.Category != nil {
		t.Errorf("Category = %q, want unset", *got.Category)
	}
}

func TestMergeExplicitZeroWins(t *testing.T) {
	t.Parallel()
	base := Entry{Muted: Ptr(true), Icon: Ptr("base-icon")}
	override := Entry{Muted: Ptr(false), Icon: Ptr("")}

	got := Merge(base, override)
	if got.GetMuted() {
		t.Error("explicit muted:false should override base muted:true")
	}
	if got.GetIcon() != "" {
		t.Errorf("Icon = %q, explicit empty string should win", got.GetIcon())
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()
	base := Default(5)
	override := Entry{
		Body:     Ptr("{{body}} on {{topic}}"),
		Muted:    Ptr(true),
		Category: Ptr("device"),
	}

	once := Merge(base, override)
	twice := Merge(base, once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDefaultEntry(t *testing.T) {
	t.Parallel()
	d := Default(15)
	if d.GetTitle() != "{{title}}" || d.GetBody() != "{{body}}" {
		t.Errorf("unexpected default templates: title=%q body=%q", d.GetTitle(), d.GetBody())
	}
	if d.GetIcon() != "" || d.GetUrgency() != UrgencyNormal || d.GetMuted() {
		t.Errorf("unexpected default hints: %+v", d)
	}
	if d.GetTimeout(0) != 15 {
		t.Errorf("Timeout = %v, want 15", d.GetTimeout(0))
	}
	if d.Category != nil {
		t.Error("default Category should stay unset")
	}
}

func TestParseUrgency(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Urgency
		wantErr bool
	}{
		{"low", UrgencyLow, false},
		{"normal", UrgencyNormal, false},
		{"critical", UrgencyCritical, false},
		{"CRITICAL", UrgencyCritical, false},
		{"", UrgencyNormal, false},
		{"shouty", UrgencyNormal, true},
	}
	for _, tt := range tests {
		got, err := ParseUrgency(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUrgency(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseUrgency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUrgencyLevel(t *testing.T) {
	t.Parallel()
	if UrgencyLow.Level() != 0 || UrgencyNormal.Level() != 1 || UrgencyCritical.Level() != 2 {
		t.Error("urgency hint bytes must follow the freedesktop spec (0/1/2)")
	}
}
