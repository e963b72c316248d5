package asset

import (
	"errors"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.500s", 12.5, false},
		{"12.5", 12.5, false},
		{"0s", 0, false},
		{"0.000s", 0, false},
		{"  3.25s ", 3.25, false},
		{"100", 100, false},
		{"", 0, true},
		{"s", 0, true},
		{"-1s", 0, true},
		{"abc", 0, true},
		{"1.2.3s", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error, got %v", tt.in, got)
			} else if !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("ParseTimestamp(%q) error = %v, want ErrInvalidTimestamp", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000s"},
		{12.5, "12.500s"},
		{5.0, "5.000s"},
		{1.2345, "1.235s"},
		{0.9999, "1.000s"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	got, err := ParseTimestamp(FormatTimestamp(7.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7.25 {
		t.Errorf("round trip = %v, want 7.25", got)
	}
}
