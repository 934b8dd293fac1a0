package model

import (
	"strings"
	"time"
)

// Config carries the options recognised by construction, merge, transform
// and lint.
type Config struct {
	// AllowReserved permits internal-namespace categories, pings and extra keys.
	AllowReserved bool
	// AllowMissingFiles treats a missing input path as an empty document.
	AllowMissingFiles bool
	RequireTags       bool
	// ExpireByVersion > 0 switches expiry to the major-version regime.
	ExpireByVersion     int
	DoNotDisableExpired bool
	// Interesting restricts "enabled" status to objects also defined there.
	Interesting []string

	// CustomIsExpired overrides the built-in expiry predicate.
	CustomIsExpired func(expires string) (bool, error)
	// CustomValidateExpiry overrides the built-in expiry validation.
	CustomValidateExpiry func(expires string) error

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Today returns the current UTC date truncated to midnight.
func (c *Config) Today() time.Time {
	now := time.Now
	if c != nil && c.Now != nil {
		now = c.Now
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Config) allowReserved() bool {
	return c != nil && c.AllowReserved
}

// ReservedPrefix marks the internal namespace.
const ReservedPrefix = "glean"

// IsReservedName reports whether a category or extra key lives in the
// internal namespace.
func IsReservedName(name string) bool {
	return name == ReservedPrefix ||
		strings.HasPrefix(name, ReservedPrefix+".") ||
		strings.HasPrefix(name, ReservedPrefix+"_")
}
