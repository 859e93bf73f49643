package template

import "testing"

func TestRender(t *testing.T) {
	t.Parallel()
	vars := Vars("Kitchen", "sensors/temp", "21C")

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"literal only", "no placeholders here", "no placeholders here"},
		{"empty", "", ""},
		{"single var", "{{topic}}", "sensors/temp"},
		{"mixed", "Temp: {{topic}} = {{body}}", "Temp: sensors/temp = 21C"},
		{"title var", "{{title}}!", "Kitchen!"},
		{"spaces inside delimiters", "{{ body }}", "21C"},
		{"unknown var renders empty", "x{{nope}}y", "xy"},
		{"adjacent placeholders", "{{title}}{{body}}", "Kitchen21C"},
		{"stray closing braces are literal", "a}}b", "a}}b"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Render(tt.tmpl, vars)
			if err != nil {
				t.Fatalf("Render(%q) error: %v", tt.tmpl, err)
			}
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestRenderMalformed(t *testing.T) {
	t.Parallel()
	for _, tmpl := range []string{"{{topic", "ok {{", "{{a}} and {{b"} {
		if _, err := Render(tmpl, Vars("", "", "")); err == nil {
			t.Errorf("Render(%q) = nil error, want malformed-template error", tmpl)
		}
	}
}

func TestRenderNilVars(t *testing.T) {
	t.Parallel()
	got, err := Render("{{topic}} literal", nil)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got != " literal" {
		t.Errorf("Render = %q, want %q", got, " literal")
	}
}
