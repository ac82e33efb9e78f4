package verify

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Method matches a typed method name against the known set. An exact
// case-insensitive match wins immediately; otherwise the best fuzzy match
// is returned as the suggested correction. Scoring is the share of the
// candidate's characters appearing in the known name, relative to the
// known name's length; equal scores fall back to levenshtein distance.
func Method(input string, known []string) (string, error) {
	candidate := strings.TrimSpace(input)
	if len(known) == 0 {
		return "", errf(CodeInvalidTxMethod, "no methods exist yet")
	}
	for _, k := range known {
		if strings.EqualFold(candidate, k) {
			return k, nil
		}
	}

	best := known[0]
	bestScore := -1.0
	bestDist := 0
	for _, k := range known {
		score := overlapScore(candidate, k)
		dist := levenshtein.ComputeDistance(strings.ToLower(candidate), strings.ToLower(k))
		if score > bestScore || (score == bestScore && dist < bestDist) {
			best, bestScore, bestDist = k, score, dist
		}
	}
	return best, errf(CodeInvalidTxMethod, "unknown method %q, closest match %q", candidate, best)
}

// overlapScore counts how many of the candidate's characters occur in the
// known name, normalized by the known name's length.
func overlapScore(candidate, known string) float64 {
	if known == "" {
		return 0
	}
	kl := strings.ToLower(known)
	hits := 0
	for _, r := range strings.ToLower(candidate) {
		if strings.ContainsRune(kl, r) {
			hits++
		}
	}
	return float64(hits) / float64(len(kl))
}
