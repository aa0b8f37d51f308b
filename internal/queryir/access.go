package queryir

import (
	"fmt"
	"strings"
)

// AccessMode classifies a query as read-only or potentially mutating.
type AccessMode string

const (
	AccessRead  AccessMode = "read"
	AccessWrite AccessMode = "write"
)

// ParseAccessMode parses "read" or "write" (case-insensitive).
func ParseAccessMode(s string) (AccessMode, error) {
	switch AccessMode(strings.ToLower(strings.TrimSpace(s))) {
	case AccessRead:
		return AccessRead, nil
	case AccessWrite:
		return AccessWrite, nil
	}
	return "", fmt.Errorf("unknown access mode %q (want read or write)", s)
}
