// Package domain defines the analysis categories and the analysis report
package domain

import (
	"retroscope/internal/core/feedback"
)

// Category names one analysis dimension
type Category string

// Analyzed categories; values appear in logs and cache keys
const (
	CategoryCommitMessages Category = "commit-messages"
	CategoryPullTitles     Category = "pr-titles"
	CategoryReviewTone     Category = "review-tone"
	CategoryIssueQuality   Category = "issue-quality"
)

// Categories lists every analysis dimension in report order
func Categories() []Category {
	return []Category{CategoryCommitMessages, CategoryPullTitles, CategoryReviewTone, CategoryIssueQuality}
}

// Input carries the collected samples offered for analysis
type Input struct {
	Repo    string
	Commits []feedback.CommitSample
	Titles  []feedback.TitleSample
	Reviews []feedback.ReviewSample
	Issues  []feedback.IssueSample
}

// Sampling records how the prompt sample for one category was drawn.
// Truncated counts items whose text was clipped to fit the prompt
type Sampling struct {
	TotalItems     int `json:"total_items"`
	SampledItems   int `json:"sampled_items"`
	TruncatedItems int `json:"truncated_items"`
}

// Report bundles the four category results for one run. A nil feedback
// block means that category had nothing to analyze; the Source tag on
// each block says whether it came from the model or the fallback scorer
type Report struct {
	feedback.Report

	Sampling map[Category]Sampling `json:"sampling"`
}

// NewReport returns an empty report with a sampling slot per category
func NewReport() *Report {
	return &Report{Sampling: make(map[Category]Sampling, 4)}
}

// Heuristic reports whether any produced block fell back to the scorer
func (r *Report) Heuristic() bool {
	if r.Commits != nil && r.Commits.Source == feedback.SourceHeuristic {
		return true
	}
	if r.Titles != nil && r.Titles.Source == feedback.SourceHeuristic {
		return true
	}
	if r.Reviews != nil && r.Reviews.Source == feedback.SourceHeuristic {
		return true
	}
	if r.Issues != nil && r.Issues.Source == feedback.SourceHeuristic {
		return true
	}
	return false
}
