package webgl

import (
	"fmt"
	"math"
	"strconv"
)

// MaxPrecision is the largest supported rounding precision.
const MaxPrecision = 15

// RoundingMode selects how values exactly halfway between two decimal steps
// are resolved.
type RoundingMode int

const (
	// RoundHalfEven rounds the exact binary value to the nearest decimal,
	// ties to even. 2.675 becomes 2.67 because its binary value is below the
	// midpoint; 0.125 becomes 0.12.
	RoundHalfEven RoundingMode = iota
	// RoundHalfAway scales by 10^digits and rounds half away from zero.
	// 0.125 becomes 0.13.
	RoundHalfAway
)

// String returns the config name of the mode.
func (m RoundingMode) String() string {
	switch m {
	case RoundHalfEven:
		return "half-even"
	case RoundHalfAway:
		return "half-away"
	default:
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
}

// ParseRoundingMode parses a config name into a RoundingMode.
// The empty string selects RoundHalfEven.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch s {
	case "", "half-even", "even":
		return RoundHalfEven, nil
	case "half-away", "away":
		return RoundHalfAway, nil
	default:
		return 0, fmt.Errorf("%w: unknown rounding mode %q", ErrInvalidOptions, s)
	}
}

// Round rounds v to the given number of decimal digits. Negative zero
// results are normalized to zero. NaN and infinities pass through.
func Round(v float64, digits int, mode RoundingMode) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	var r float64
	switch mode {
	case RoundHalfAway:
		scale := math.Pow10(digits)
		r = math.Round(v*scale) / scale
	default:
		// FormatFloat is correctly rounded, so the text is the nearest
		// decimal to the exact binary value.
		r, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'f', digits, 64), 64)
	}

	if r == 0 {
		return 0
	}
	return r
}
