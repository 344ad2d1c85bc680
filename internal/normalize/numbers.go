package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ParseMetric converts a raw metric value to a nullable float64.
// Empty, non-numeric, NaN and infinite values are missing (nil), as are
// Go-only literal forms such as "1_000" and hex floats.
func ParseMetric(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, '_') {
		return nil
	}
	if u := strings.ToLower(strings.TrimLeft(s, "+-")); strings.HasPrefix(u, "0x") {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
