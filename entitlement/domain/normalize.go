package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// NormalizeCaps coerces a loosely-typed capability list into a canonical one:
// strings are trimmed, empty and non-string entries are dropped, duplicates
// are removed case-insensitively while preserving first-seen casing. The
// returned order is stable but carries no meaning.
func NormalizeCaps(input []interface{}) []string {
	caps := []string{}
	seen := map[string]bool{}

	for _, entry := range input {
		s, ok := entry.(string)
		if !ok {
			continue
		}

		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		key := strings.ToLower(s)
		if seen[key] {
			continue
		}

		seen[key] = true

		caps = append(caps, s)
	}

	return caps
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp coerces a loosely-typed timestamp into a canonical UTC
// instant. It accepts nil, an epoch-millisecond number, an ISO-8601 string,
// or a native time value; anything unparseable maps to nil rather than an
// error.
func ParseTimestamp(input interface{}) *time.Time {
	switch v := input.(type) {
	case nil:
		return nil
	case time.Time:
		return utcTime(v)
	case *time.Time:
		if v == nil {
			return nil
		}

		return utcTime(*v)
	case float64:
		return utcTime(time.UnixMilli(int64(v)))
	case int64:
		return utcTime(time.UnixMilli(v))
	case int:
		return utcTime(time.UnixMilli(int64(v)))
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return nil
		}

		return utcTime(time.UnixMilli(ms))
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return utcTime(t)
			}
		}

		return nil
	default:
		return nil
	}
}

// NormalizeStatus maps arbitrary input onto one of the three known statuses.
// Anything unrecognized, including the empty string, maps to inactive.
func NormalizeStatus(input string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(input))) {
	case StatusActive:
		return StatusActive
	case StatusCancelAtPeriodEnd:
		return StatusCancelAtPeriodEnd
	default:
		return StatusInactive
	}
}

func utcTime(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
