// Package environment reads typed configuration values from environment
// variables. Every helper falls back to a default when the variable is
// unset, empty or unparsable, so a typo never stops the process.
package environment

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StringOr returns the variable's value, or def when it is unset or empty.
func StringOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// BoolOr accepts the values strconv.ParseBool does.
func BoolOr(name string, def bool) bool {
	return parsed(name, def, strconv.ParseBool)
}

// IntOr parses a decimal integer.
func IntOr(name string, def int) int {
	return parsed(name, def, strconv.Atoi)
}

// FloatOr parses a decimal or scientific-notation float.
func FloatOr(name string, def float64) float64 {
	return parsed(name, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// DurationOr parses a Go duration such as "30s" or "5m".
func DurationOr(name string, def time.Duration) time.Duration {
	return parsed(name, def, time.ParseDuration)
}

// StringSliceOr splits a comma-separated list, trimming blanks and dropping
// empty items. def is returned when nothing is left.
func StringSliceOr(name string, def []string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(name), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func parsed[T any](name string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}
