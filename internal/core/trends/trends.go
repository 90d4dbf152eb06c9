// Package trends derives pure analytics from collected activity: monthly
// buckets, trend direction and consistency, tech stack spread and the
// reviewer network. Collectors bucket, this package only computes
package trends

import (
	"slices"
	"strings"
)

// Direction labels for month-over-month activity movement
const (
	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"
	DirectionStable     = "stable"
)

const (
	// Halves need this many months before a direction is called
	trendMinimumMonths = 3

	increasingMultiplier = 1.2
	decreasingMultiplier = 0.8

	veryConsistentScore = 0.7
	inconsistentScore   = 0.3

	topLanguages = 5
	topReviewers = 5

	// PR peaks quieter than this stay out of the insight lines
	moderatePulls = 10
)

// MonthlyTrend is one month's activity counts, keyed by "YYYY-MM"
type MonthlyTrend struct {
	Month        string `json:"month"`
	Commits      int    `json:"commits"`
	PullRequests int    `json:"pull_requests"`
	Reviews      int    `json:"reviews"`
	Issues       int    `json:"issues"`
}

// Total sums all activity kinds for the month
func (m MonthlyTrend) Total() int {
	return m.Commits + m.PullRequests + m.Reviews + m.Issues
}

// Buckets accumulates per-month counts during collection
type Buckets map[string]*MonthlyTrend

// At returns the bucket for a month key, creating it on first use
func (b Buckets) At(month string) *MonthlyTrend {
	t, ok := b[month]
	if !ok {
		t = &MonthlyTrend{Month: month}
		b[month] = t
	}
	return t
}

// Sorted flattens the buckets into a month-ascending series
func (b Buckets) Sorted() []MonthlyTrend {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]MonthlyTrend, 0, len(b))
	for _, k := range keys {
		out = append(out, *b[k])
	}
	return out
}

// topNames returns up to n keys ordered by count descending, name ascending
func topNames(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if d := counts[b] - counts[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
