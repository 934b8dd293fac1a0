package model

import (
	"fmt"
	"strconv"
	"time"

	"meterc/internal/diag"
)

// ExpiryKind selects how Expiry is interpreted.
type ExpiryKind uint8

const (
	ExpiryNever ExpiryKind = iota
	ExpiryExpired
	ExpiryDate
	ExpiryVersion
)

// Expiry is the parsed `expires` field.
type Expiry struct {
	Kind    ExpiryKind
	Raw     string
	Date    time.Time // ExpiryDate, UTC midnight
	Version int       // ExpiryVersion
}

func (e Expiry) String() string { return e.Raw }

const dateLayout = "2006-01-02"

// ParseExpiry validates `expires` under the regime selected by cfg.
// Mixing regimes is fatal for the whole run.
func ParseExpiry(v any, cfg *Config) (Expiry, error) {
	var text string
	switch x := v.(type) {
	case nil:
		return Expiry{}, errorf(diag.ObjMissingParameter, "'expires' is required")
	case string:
		text = x
	default:
		n, err := toInt(v)
		if err != nil {
			return Expiry{}, errorf(diag.ObjInvalidExpiry, "Invalid expiration '%v'", v)
		}
		text = strconv.Itoa(n)
	}

	if cfg != nil && cfg.CustomValidateExpiry != nil {
		if err := cfg.CustomValidateExpiry(text); err != nil {
			return Expiry{}, errorf(diag.ObjInvalidExpiry, "%v", err)
		}
		return classify(text), nil
	}

	switch text {
	case "never":
		return Expiry{Kind: ExpiryNever, Raw: text}, nil
	case "expired":
		return Expiry{Kind: ExpiryExpired, Raw: text}, nil
	}

	byVersion := cfg != nil && cfg.ExpireByVersion > 0
	if n, err := strconv.Atoi(text); err == nil {
		if !byVersion {
			return Expiry{}, diag.Fatalf(diag.ObjMixedExpiry, "",
				"Version-based expiration '%d' used, but the run is not configured to expire by version", n)
		}
		if n < 1 {
			return Expiry{}, errorf(diag.ObjInvalidExpiry, "Invalid expiration version '%d'. Must be a positive integer.", n)
		}
		return Expiry{Kind: ExpiryVersion, Raw: text, Version: n}, nil
	}

	d, err := time.Parse(dateLayout, text)
	if err != nil {
		return Expiry{}, errorf(diag.ObjInvalidExpiry,
			"Invalid expiration date '%s'. Must be of the form yyyy-mm-dd in UTC.", text)
	}
	if byVersion {
		return Expiry{}, diag.Fatalf(diag.ObjMixedExpiry, "",
			"Date-based expiration '%s' used, but the run is configured to expire by version %d", text, cfg.ExpireByVersion)
	}
	return Expiry{Kind: ExpiryDate, Raw: text, Date: d}, nil
}

// classify без проверок: для кастомных валидаторов.
func classify(text string) Expiry {
	switch text {
	case "never":
		return Expiry{Kind: ExpiryNever, Raw: text}
	case "expired":
		return Expiry{Kind: ExpiryExpired, Raw: text}
	}
	if n, err := strconv.Atoi(text); err == nil {
		return Expiry{Kind: ExpiryVersion, Raw: text, Version: n}
	}
	if d, err := time.Parse(dateLayout, text); err == nil {
		return Expiry{Kind: ExpiryDate, Raw: text, Date: d}
	}
	return Expiry{Kind: ExpiryDate, Raw: text}
}

// IsExpired evaluates the expiry against cfg's clock or version.
func (e Expiry) IsExpired(cfg *Config) (bool, error) {
	if cfg != nil && cfg.CustomIsExpired != nil {
		ok, err := cfg.CustomIsExpired(e.Raw)
		if err != nil {
			return false, fmt.Errorf("expiry predicate for '%s': %w", e.Raw, err)
		}
		return ok, nil
	}
	switch e.Kind {
	case ExpiryNever:
		return false, nil
	case ExpiryExpired:
		return true, nil
	case ExpiryVersion:
		if cfg == nil || cfg.ExpireByVersion <= 0 {
			return false, nil
		}
		return e.Version <= cfg.ExpireByVersion, nil
	default:
		if e.Date.IsZero() {
			return false, fmt.Errorf("invalid expiration date '%s'", e.Raw)
		}
		return !e.Date.After(cfg.Today()), nil
	}
}
