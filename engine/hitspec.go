package engine

import "strings"

// HitSpecOK is the pure hit-count predicate. It never errors: an empty
// spec is unconditionally true, and any spec it cannot parse is false.
// Validation of the spec string at breakpoint-add time is stricter and
// lives in validateHitSpec.
func HitSpecOK(spec string, hits int) bool {
	if spec == "" {
		return true
	}
	switch {
	case strings.HasPrefix(spec, "=="):
		n, ok := parseNonNegativeInt(spec[2:])
		return ok && hits == n
	case strings.HasPrefix(spec, ">="):
		n, ok := parseNonNegativeInt(spec[2:])
		return ok && hits >= n
	case strings.HasPrefix(spec, "multiple-of(") && strings.HasSuffix(spec, ")"):
		n, ok := parseNonNegativeInt(spec[len("multiple-of(") : len(spec)-1])
		return ok && n > 0 && hits%n == 0
	default:
		return false
	}
}

// validateHitSpec rejects malformed hit-count specs at add time: a spec
// that can never fire as intended should not be silently accepted.
func validateHitSpec(spec string) error {
	if spec == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(spec, "=="):
		if _, ok := parseNonNegativeInt(spec[2:]); !ok {
			return newError(SubsystemBreak, DetailValue, "invalid hit count spec %q", spec)
		}
	case strings.HasPrefix(spec, ">="):
		if _, ok := parseNonNegativeInt(spec[2:]); !ok {
			return newError(SubsystemBreak, DetailValue, "invalid hit count spec %q", spec)
		}
	case strings.HasPrefix(spec, "multiple-of(") && strings.HasSuffix(spec, ")"):
		n, ok := parseNonNegativeInt(spec[len("multiple-of(") : len(spec)-1])
		if !ok || n <= 0 {
			return newError(SubsystemBreak, DetailValue, "invalid hit count spec %q", spec)
		}
	default:
		return newError(SubsystemBreak, DetailValue, "invalid hit count spec %q", spec)
	}
	return nil
}

// parseNonNegativeInt parses a non-negative integer with no tolerance
// for leading/trailing whitespace or a leading sign.
func parseNonNegativeInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
