package asset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimestamp converts the textual seconds format used on the wire
// (e.g. "12.500s") to a float64 number of seconds. The trailing "s" unit
// suffix is optional. Negative, non-numeric and non-finite values are
// rejected with ErrInvalidTimestamp.
func ParseTimestamp(ts string) (float64, error) {
	clean := strings.TrimSuffix(strings.TrimSpace(ts), "s")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}

	sec, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}
	if sec < 0 || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}
	return sec, nil
}

// FormatTimestamp renders seconds in the SS.mmms wire format, e.g. 12.5
// becomes "12.500s".
func FormatTimestamp(sec float64) string {
	whole := int(sec)
	ms := int(math.Round((sec - float64(whole)) * 1000))
	if ms >= 1000 {
		whole++
		ms -= 1000
	}
	return fmt.Sprintf("%d.%03ds", whole, ms)
}
