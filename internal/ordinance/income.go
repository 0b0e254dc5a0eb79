package ordinance

import "math"

// SaturatingInt64 converts f to int64, clamping values outside the int64
// range to its bounds. NaN converts to 0. Fractions truncate toward zero.
func SaturatingInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64: // float64(MaxInt64) rounds up to 2^63
		return math.MaxInt64
	case f < math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
