// Package money converts between decimal strings and int64 minor units
// (two fractional digits).
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const Scale = 100

var ErrInvalidFormat = errors.New("invalid amount format")

// Parse reads "150", "150.5", "150.50" or "-3.25" into minor units.
// More than two fractional digits is rejected rather than rounded.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidFormat
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || (hasDot && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	if !digits(whole) || !digits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > math.MaxInt64/Scale {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidFormat, s)
	}

	var f int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		f, _ = strconv.ParseInt(frac, 10, 64)
	}

	v := w*Scale + f
	if v < 0 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidFormat, s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Format renders minor units as a decimal string with two fractional digits.
func Format(v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = uint64(-(v + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/Scale, u%Scale)
}
