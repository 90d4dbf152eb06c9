// Package domain defines the activity records and run result for collection
package domain

import (
	"time"

	"retroscope/internal/core/filter"
	"retroscope/internal/core/trends"
)

// Resource names one of the collected activity kinds
type Resource string

// Collected resources; values appear in status flags and log fields
const (
	ResourceCommits Resource = "commits"
	ResourcePulls   Resource = "pull_requests"
	ResourceReviews Resource = "reviews"
	ResourceIssues  Resource = "issues"
)

// Resources lists every collected kind in report order
func Resources() []Resource {
	return []Resource{ResourceCommits, ResourcePulls, ResourceReviews, ResourceIssues}
}

// ResourceStatus records how one resource collection ended.
// A failed resource leaves its records empty, never nil
type ResourceStatus struct {
	Failed   bool   `json:"failed"`
	ErrClass string `json:"err_class,omitempty"`
	Err      string `json:"err,omitempty"`
}

// Commit is one collected commit message
type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url,omitempty"`
}

// PullRequest is one collected pull request
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	URL       string     `json:"url,omitempty"`
}

// Review is one collected review comment
type Review struct {
	PullNumber  int       `json:"pr_number"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
	URL         string    `json:"url,omitempty"`
}

// Issue is one collected issue
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	State     string    `json:"state"`
	Labels    []string  `json:"labels,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url,omitempty"`
}

// PullRequestSummary is a spotlight entry for the report
type PullRequestSummary struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	URL       string     `json:"html_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
}

// Result is everything one collection run produced. Record slices are always
// non-nil; a resource that failed or timed out stays empty and its Status
// entry says why
type Result struct {
	RunID       string      `json:"run_id"`
	Repo        string      `json:"repo"`
	Months      int         `json:"months"`
	Since       time.Time   `json:"since"`
	Until       time.Time   `json:"until"`
	CollectedAt time.Time   `json:"collected_at"`
	Filters     filter.Spec `json:"filters"`

	Commits  []Commit             `json:"commits"`
	Pulls    []PullRequest        `json:"pull_requests"`
	Reviews  []Review             `json:"reviews"`
	Issues   []Issue              `json:"issues"`
	Examples []PullRequestSummary `json:"pull_request_examples"`

	Status map[Resource]ResourceStatus `json:"status"`

	Monthly       []trends.MonthlyTrend `json:"monthly_trends"`
	TechStack     *trends.TechStack     `json:"tech_stack,omitempty"`
	Collaboration *trends.Collaboration `json:"collaboration,omitempty"`
}

// NewResult returns a structurally complete Result with empty records and a
// clean status entry per resource
func NewResult(runID, repo string, months int, since, until time.Time, f filter.Spec) *Result {
	status := make(map[Resource]ResourceStatus, 4)
	for _, r := range Resources() {
		status[r] = ResourceStatus{}
	}
	return &Result{
		RunID:       runID,
		Repo:        repo,
		Months:      months,
		Since:       since,
		Until:       until,
		CollectedAt: until,
		Filters:     f,
		Commits:     []Commit{},
		Pulls:       []PullRequest{},
		Reviews:     []Review{},
		Issues:      []Issue{},
		Examples:    []PullRequestSummary{},
		Status:      status,
		Monthly:     []trends.MonthlyTrend{},
	}
}

// Flag marks a resource as failed with a classification and message
func (r *Result) Flag(res Resource, class, msg string) {
	r.Status[res] = ResourceStatus{Failed: true, ErrClass: class, Err: msg}
}

// Failed reports whether a resource collection was flagged
func (r *Result) Failed(res Resource) bool { return r.Status[res].Failed }

// Partial reports whether any resource collection was flagged
func (r *Result) Partial() bool {
	for _, st := range r.Status {
		if st.Failed {
			return true
		}
	}
	return false
}

// Count returns the number of records collected for a resource
func (r *Result) Count(res Resource) int {
	switch res {
	case ResourceCommits:
		return len(r.Commits)
	case ResourcePulls:
		return len(r.Pulls)
	case ResourceReviews:
		return len(r.Reviews)
	case ResourceIssues:
		return len(r.Issues)
	}
	return 0
}
