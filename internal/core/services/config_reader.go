package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// configReader reads typed values from a ConfigStore, falling back to a
// default when a key is unset or unusable. TOML decodes integers as int64,
// environment overrides arrive as strings, and tests set plain ints, so every
// numeric form is accepted.
type configReader struct {
	store driven.ConfigStore
}

func (r configReader) lookup(key string) (any, bool) {
	v, ok := r.store.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// str returns the value at key, or def when unset or blank.
func (r configReader) str(key, def string) string {
	v, _ := r.lookup(key)
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// count returns a positive integer, or def.
func (r configReader) count(key string, def int) int {
	if n, ok := r.integer(key); ok && n > 0 {
		return n
	}
	return def
}

// integer returns any integer stored at key, zero and negatives included.
func (r configReader) integer(key string) (int, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// nonNegative keeps an explicit 0.
func (r configReader) nonNegative(key string, def int) int {
	if n, ok := r.integer(key); ok && n >= 0 {
		return n
	}
	return def
}

func (r configReader) number(key string) (float64, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// rate returns a positive number, or def.
func (r configReader) rate(key string, def float64) float64 {
	if f, ok := r.number(key); ok && f > 0 {
		return f
	}
	return def
}

// fraction returns a number in (0, 1], or def.
func (r configReader) fraction(key string, def float64) float64 {
	if f, ok := r.number(key); ok && f > 0 && f <= 1 {
		return f
	}
	return def
}

func (r configReader) flag(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return def
}

// duration reads a whole number of units, e.g. seconds or minutes.
func (r configReader) duration(key string, unit, def time.Duration) time.Duration {
	if n, ok := r.integer(key); ok && n > 0 {
		return time.Duration(n) * unit
	}
	return def
}
