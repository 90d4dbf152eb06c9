// Package heuristic implements the deterministic fallback scorers used when
// the completions service is unavailable or returns an invalid payload.
// Each scorer sums small integer signals, classifies items against a fixed
// threshold, and quotes up to three examples per side
package heuristic

import (
	"regexp"
	"unicode/utf8"

	"retroscope/internal/core/normalize"
)

// Classification thresholds, calibrated in characters (runes)
const (
	commitMinLength  = 10
	commitMaxLength  = 72
	commitTooLong    = 100
	commitMinBodyLen = 20

	titleMinLength = 15
	titleMaxLength = 80
	titleMinWords  = 4

	issueBodyShort    = 100
	issueBodyDetailed = 200
	issueGoodScore    = 4

	goodScore   = 2 // commit, title and review threshold
	maxExamples = 3
)

// Scorer runs the four category scorers.
// Tone matching happens over normalized text; length checks measure the original
type Scorer struct {
	n *normalize.Normalizer
}

// New constructs a Scorer
func New() *Scorer { return &Scorer{n: normalize.New()} }

// matchAny reports whether any pattern matches s
func matchAny(ps []*regexp.Regexp, s string) bool {
	for _, p := range ps {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// countMatches counts how many of the patterns match s (each at most once)
func countMatches(ps []*regexp.Regexp, s string) int {
	n := 0
	for _, p := range ps {
		if p.MatchString(s) {
			n++
		}
	}
	return n
}

// runeLen counts characters the way the thresholds were calibrated
func runeLen(s string) int { return utf8.RuneCountInString(s) }

// clip truncates s to n runes, marking the cut with an ellipsis
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// firstN returns at most the first n entries of xs
func firstN(xs []string, n int) []string {
	if len(xs) <= n {
		return xs
	}
	return xs[:n]
}
