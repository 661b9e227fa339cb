// Package formatting parses loosely formatted values: byte sizes from
// configuration and JSON payloads embedded in model output.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var byteUnits = map[string]int{
	"":   0,
	"B":  0,
	"KB": 1,
	"MB": 2,
	"GB": 3,
	"TB": 4,
}

// ParseBytes converts a size such as "5MB" or "512 kb" into a byte count using
// base-1024 units. A bare number is read as bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})

	number, unit := s, ""
	if split >= 0 {
		number = s[:split]
		unit = strings.ToUpper(strings.TrimSpace(s[split:]))
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	exp, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return int64(value * math.Pow(1024, float64(exp))), nil
}
