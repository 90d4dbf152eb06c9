package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"retroscope/internal/core/feedback"
	"retroscope/internal/core/filter"
	"retroscope/internal/core/trends"
	adomain "retroscope/internal/services/analyze/domain"
	cdomain "retroscope/internal/services/collect/domain"
)

func fixtureResult(t *testing.T) *cdomain.Result {
	t.Helper()
	until := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	res := cdomain.NewResult("run-1", "acme/widgets", 6, until.AddDate(0, -6, 0), until, filter.Spec{})
	res.Commits = []cdomain.Commit{
		{SHA: "abc1234def", Message: "fix: handle empty payload", Author: "kim"},
		{SHA: "fff0000aaa", Message: "wip", Author: "kim"},
	}
	res.Pulls = []cdomain.PullRequest{
		{Number: 7, Title: "Add retry to cache writes", Author: "kim", Additions: 80, Deletions: 12},
	}
	res.Issues = []cdomain.Issue{
		{Number: 3, Title: "Crash on startup", Author: "lee"},
	}
	res.Examples = []cdomain.PullRequestSummary{
		{Number: 7, Title: "Add retry to cache writes", Author: "kim", Additions: 80, Deletions: 12, URL: "https://example.test/pull/7"},
	}
	res.Monthly = []trends.MonthlyTrend{
		{Month: "2025-04", Commits: 1},
		{Month: "2025-05", Commits: 8, PullRequests: 2},
		{Month: "2025-06", Commits: 3, Issues: 1},
	}
	res.Flag(cdomain.ResourceReviews, "transient_upstream", "GET /reviews: 502 after 3 attempts")
	return res
}

func fixtureAnalysis() *adomain.Report {
	rep := adomain.NewReport()
	rep.Commits = &feedback.CommitFeedback{
		Source:       feedback.SourceLLM,
		TotalCommits: 2,
		GoodMessages: 1,
		PoorMessages: 1,
		Suggestions:  []string{"Use imperative mood in subjects"},
		ExamplesGood: []feedback.CommitExample{
			{SHA: "abc1234def", Message: "fix: handle empty payload", Reason: "states the change and its scope"},
		},
		ExamplesPoor: []feedback.CommitExample{
			{SHA: "fff0000aaa", Message: "wip", Reason: "says nothing about the change", Suggestion: "describe what was in progress"},
		},
	}
	rep.Sampling[adomain.CategoryCommitMessages] = adomain.Sampling{TotalItems: 2, SampledItems: 2}
	rep.Titles = &feedback.TitleFeedback{
		Source:      feedback.SourceHeuristic,
		TotalPulls:  1,
		ClearTitles: 1,
		Suggestions: []string{"Keep titles under 72 characters"},
	}
	rep.Sampling[adomain.CategoryPullTitles] = adomain.Sampling{TotalItems: 1, SampledItems: 1}
	return rep
}

func TestConsoleRenderSections(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).Render(fixtureResult(t), fixtureAnalysis())
	out := buf.String()

	for _, want := range []string{
		"Retrospective for acme/widgets",
		"Run: run-1",
		"Commits",
		"FAILED (transient_upstream)",
		"Reviews collection incomplete: GET /reviews: 502 after 3 attempts",
		"Commit messages",
		"Good 1/2, needs work 1/2",
		"+ abc1234 fix: handle empty payload",
		"- fff0000 wip",
		"try: describe what was in progress",
		"Pull request titles",
		"heuristic (analysis service unavailable, reduced confidence)",
		"Pull request spotlight",
		"#7 Add retry to cache writes by kim (+80/-12)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q\n%s", want, out)
		}
	}
}

func TestConsoleSkipsNilBlocks(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).Render(fixtureResult(t), adomain.NewReport())
	out := buf.String()

	for _, absent := range []string{"Review tone", "Issue quality"} {
		if strings.Contains(out, absent) {
			t.Errorf("console output should omit %q when block is nil\n%s", absent, out)
		}
	}
}

func TestMarkdownRenderSections(t *testing.T) {
	var buf bytes.Buffer
	NewMarkdown(&buf).Render(fixtureResult(t), fixtureAnalysis())
	out := buf.String()

	for _, want := range []string{
		"# Retrospective for acme/widgets",
		"## Collection summary",
		"| Reviews | 0 | **failed** (transient_upstream) |",
		"> Some resources failed to collect",
		"## Commit messages",
		"_Source: model-assisted._",
		"`abc1234` fix: handle empty payload",
		"## Pull request titles",
		"_Source: heuristic (analysis service unavailable, reduced confidence)._",
		"## Activity trends",
		"| 2025-05 | 8 | 2 | 0 | 0 |",
		"[#7](https://example.test/pull/7)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "—") {
		t.Error("markdown output should not use em-dashes")
	}
}

func TestSamplingNote(t *testing.T) {
	if got := samplingNote(adomain.Sampling{TotalItems: 10, SampledItems: 10}); got != "" {
		t.Errorf("fully analyzed sample should produce no note, got %q", got)
	}
	got := samplingNote(adomain.Sampling{TotalItems: 30, SampledItems: 20, TruncatedItems: 4})
	if !strings.Contains(got, "20 of 30") || !strings.Contains(got, "4 truncated") {
		t.Errorf("unexpected sampling note %q", got)
	}
}
