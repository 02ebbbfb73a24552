package models

import "testing"

func TestDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", Missing},
		{" ", " "},
		{"\t", "\t"},
		{"0", "0"},
		{"Lima", "Lima"},
	}
	for _, tt := range tests {
		if got := Display(tt.in); got != tt.want {
			t.Errorf("Display(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
