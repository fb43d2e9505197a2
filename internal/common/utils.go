package common

import (
	"math"
	"strings"
)

// HasAny returns true if s equals any of the candidates, ignoring case and
// surrounding whitespace. An empty candidate list matches everything.
func HasAny(s string, candidates ...string) bool {
	if len(candidates) == 0 {
		return true
	}
	s = strings.TrimSpace(s)
	for _, c := range candidates {
		if strings.EqualFold(s, strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
