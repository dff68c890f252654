// SPDX-License-Identifier: MIT

package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a comma-separated list of phase durations into a Pattern.
// Whitespace around values is ignored ("6, 0, 6" is valid). Accepted arities:
//
//	2 values: inhale, exhale
//	3 values: inhale, hold-in, exhale
//	4 values: inhale, hold-in, exhale, hold-out
func Parse(s string) (Pattern, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			return Pattern{}, fmt.Errorf("%w: empty value in %q", ErrBadPattern, s)
		}
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q is not a number", ErrBadPattern, trimmed)
		}
		vals = append(vals, v)
	}

	var p Pattern
	switch len(vals) {
	case 2:
		p = Pattern{Inhale: vals[0], Exhale: vals[1]}
	case 3:
		p = Pattern{Inhale: vals[0], HoldIn: vals[1], Exhale: vals[2]}
	case 4:
		p = Pattern{Inhale: vals[0], HoldIn: vals[1], Exhale: vals[2], HoldOut: vals[3]}
	default:
		return Pattern{}, fmt.Errorf("%w: want 2, 3 or 4 comma-separated durations, got %d", ErrBadPattern, len(vals))
	}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}
