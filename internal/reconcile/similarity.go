// Package reconcile detects and collapses duplicate records arriving from
// multiple data-entry paths, and normalizes heterogeneous record shapes
// from bulk imports into the canonical model.
package reconcile

import "strings"

// tokenPrefixLen is the shared-prefix length at which two tokens are
// treated as the same word. It lets abbreviated forms ("int'l") match
// their expansions ("international") without a full edit-distance pass.
const tokenPrefixLen = 3

// Similarity scores two names in [0, 1]: exact match (ignoring case and
// surrounding space) scores 1.0, substring containment either way scores
// the configured containment value, otherwise the fraction of matching
// whitespace-delimited tokens over the union of tokens. Tokens match when
// equal or when they share a prefix of at least tokenPrefixLen bytes.
func Similarity(a, b string, containment float64) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containment
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)

	matchedB := make([]bool, len(tokensB))
	shared := 0
	for _, ta := range tokensA {
		for j, tb := range tokensB {
			if matchedB[j] {
				continue
			}
			if tokensMatch(ta, tb) {
				matchedB[j] = true
				shared++
				break
			}
		}
	}
	if shared == 0 {
		return 0
	}

	union := len(tokensA) + len(tokensB) - shared
	return float64(shared) / float64(union)
}

func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < tokenPrefixLen || len(b) < tokenPrefixLen {
		return false
	}
	return a[:tokenPrefixLen] == b[:tokenPrefixLen]
}
