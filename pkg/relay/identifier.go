// Package relay contains the public domain types and contracts for the
// DeepDrift relay: frame and envelope shapes, message type tags, and the
// interfaces the dispatch core depends on.
package relay

import "regexp"

var uidPattern = regexp.MustCompile(`^\d{6}$`)

// IsValidUID reports whether candidate is a well-formed identifier:
// exactly six ASCII decimal digits, nothing else.
func IsValidUID(candidate string) bool {
	return uidPattern.MatchString(candidate)
}
