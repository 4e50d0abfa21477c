package identity

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple name", input: "Jan Novak", expected: "jan-novak"},
		{name: "diacritics", input: "Jan Novák", expected: "jan-novak"},
		{name: "czech full", input: "Jiří Šťastný", expected: "jiri-stastny"},
		{name: "multiple separators", input: "John  -  Doe", expected: "john-doe"},
		{name: "leading and trailing junk", input: "  John Doe!  ", expected: "john-doe"},
		{name: "digits kept", input: "Agent 47", expected: "agent-47"},
		{name: "already a slug", input: "jan-novak", expected: "jan-novak"},
		{name: "empty", input: "", expected: ""},
		{name: "only punctuation", input: "!!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jiří", "Jiri"},
		{"Müller", "Muller"},
		{"Ångström", "Angstrom"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := removeDiacritics(tt.input); got != tt.expected {
			t.Errorf("removeDiacritics(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
