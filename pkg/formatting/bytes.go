// Package formatting converts byte sizes between counts and the strings used
// in config files and error messages.
package formatting

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned when a byte size string cannot be parsed.
var ErrInvalidSize = errors.New("invalid byte size")

// units are base-1024 and stop at TB; upload limits never approach more.
var units = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above one, using precision decimal places. Non-positive n renders "0 B".
func FormatBytes(n int64, precision int) string {
	if n <= 0 {
		return "0 B"
	}

	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[i]
}

// ParseBytes reads sizes like "25MB", "1.5 GB", "4KiB", or a bare byte count.
// Units are case-insensitive and the IEC spellings are aliases of the
// base-1024 ones.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	exp, err := unitExponent(unit)
	if err != nil {
		return 0, err
	}

	total := value * math.Pow(1024, float64(exp))
	if total > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
	}
	return int64(total), nil
}

func unitExponent(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 0, nil
	}
	if len(u) == 3 && u[1] == 'I' {
		u = u[:1] + u[2:]
	}
	for i, known := range units {
		if u == known {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidSize, unit)
}
