package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing", "  Airport Road  ", "Airport Road"},
		{"internal runs collapse", "Main   Street\t\tWest", "Main Street West"},
		{"newlines become spaces", "Terminal 2\nGate B", "Terminal 2 Gate B"},
		{"already clean", "Central Station", "Central Station"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"e164 passes through", "+14155552671", "+14155552671"},
		{"us national formatted", "(415) 555-2671", "+14155552671"},
		{"garbage kept for validator", "not-a-phone", "not-a-phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
