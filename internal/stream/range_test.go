package stream

import (
	"errors"
	"testing"
)

func TestParseRange(t *testing.T) {
	const size = 1000

	tests := []struct {
		name   string
		header string
		want   *ByteRange
		err    error
	}{
		{"no header", "", nil, nil},
		{"full span", "bytes=0-999", &ByteRange{0, 999}, nil},
		{"open end", "bytes=500-", &ByteRange{500, 999}, nil},
		{"bounded", "bytes=200-299", &ByteRange{200, 299}, nil},
		{"end clamped to size", "bytes=900-5000", &ByteRange{900, 999}, nil},
		{"suffix", "bytes=-100", &ByteRange{900, 999}, nil},
		{"suffix larger than file", "bytes=-5000", &ByteRange{0, 999}, nil},
		{"first of multi-range", "bytes=0-99,200-299", &ByteRange{0, 99}, nil},
		{"missing unit", "0-99", nil, ErrInvalidRange},
		{"not a number", "bytes=abc-def", nil, ErrInvalidRange},
		{"negative suffix", "bytes=-0", nil, ErrInvalidRange},
		{"no dash", "bytes=100", nil, ErrInvalidRange},
		{"start past end", "bytes=300-200", nil, ErrUnsatisfiable},
		{"start past size", "bytes=1000-", nil, ErrUnsatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, size)
			if !errors.Is(err, tt.err) {
				t.Fatalf("ParseRange(%q) error = %v, want %v", tt.header, err, tt.err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseRange(%q) = %v, want %v", tt.header, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseRange(%q) = %+v, want %+v", tt.header, *got, *tt.want)
			}
		})
	}
}

func TestByteRangeHelpers(t *testing.T) {
	br := ByteRange{Start: 200, End: 299}
	if br.Length() != 100 {
		t.Errorf("Length() = %d, want 100", br.Length())
	}
	if got := br.ContentRange(1000); got != "bytes 200-299/1000" {
		t.Errorf("ContentRange() = %q", got)
	}
}
