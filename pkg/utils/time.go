package utils

import (
	"time"
)

// Now is the clock used by every registry. Tests may swap it to freeze time.
var Now = time.Now

// Since returns time elapsed since t according to Now.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}

// IsExpired reports whether timestamp+ttl has elapsed.
func IsExpired(timestamp time.Time, ttl time.Duration) bool {
	return Now().After(timestamp.Add(ttl))
}

// TimeUntilExpiry returns remaining lifetime, never negative.
func TimeUntilExpiry(timestamp time.Time, ttl time.Duration) time.Duration {
	remaining := timestamp.Add(ttl).Sub(Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatTimestamp formats a timestamp in RFC3339
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses an RFC3339 timestamp
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
