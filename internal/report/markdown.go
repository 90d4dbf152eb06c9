package report

import (
	"fmt"
	"io"
	"strings"

	"retroscope/internal/core/trends"
	pstrings "retroscope/internal/platform/strings"
	adomain "retroscope/internal/services/analyze/domain"
	cdomain "retroscope/internal/services/collect/domain"
)

// Markdown renders a run as a markdown document
type Markdown struct {
	w io.Writer
}

// NewMarkdown creates a markdown renderer
func NewMarkdown(w io.Writer) *Markdown {
	return &Markdown{w: w}
}

// Render writes the whole report as markdown
func (m *Markdown) Render(res *cdomain.Result, analysis *adomain.Report) {
	fmt.Fprintf(m.w, "# Retrospective for %s\n\n", res.Repo)
	fmt.Fprintf(m.w, "Window: %s to %s (%d months). Run `%s`, collected %s.\n\n",
		res.Since.Format("2006-01-02"), res.Until.Format("2006-01-02"), res.Months,
		res.RunID, res.CollectedAt.Format("2006-01-02 15:04 MST"))

	m.summary(res)

	if analysis != nil {
		m.commits(analysis)
		m.titles(analysis)
		m.reviews(analysis)
		m.issues(analysis)
	}

	m.trends(res)
	m.spotlight(res)
}

func (m *Markdown) summary(res *cdomain.Result) {
	fmt.Fprintln(m.w, "## Collection summary")
	fmt.Fprintln(m.w)
	fmt.Fprintln(m.w, "| Resource | Collected | Status |")
	fmt.Fprintln(m.w, "|----------|-----------|--------|")
	for _, r := range cdomain.Resources() {
		status := "ok"
		if st := res.Status[r]; st.Failed {
			status = fmt.Sprintf("**failed** (%s)", st.ErrClass)
		}
		fmt.Fprintf(m.w, "| %s | %d | %s |\n", resourceLabel(r), res.Count(r), status)
	}
	fmt.Fprintln(m.w)
	if res.Partial() {
		fmt.Fprintln(m.w, "> Some resources failed to collect; counts above reflect only what was gathered.")
		fmt.Fprintln(m.w)
	}
}

func (m *Markdown) provenance(a *adomain.Report, cat adomain.Category, src string) {
	fmt.Fprintf(m.w, "_Source: %s._", src)
	if note := samplingNote(a.Sampling[cat]); note != "" {
		fmt.Fprintf(m.w, " _Sample: %s._", note)
	}
	fmt.Fprint(m.w, "\n\n")
}

func (m *Markdown) commits(a *adomain.Report) {
	fb := a.Commits
	if fb == nil {
		return
	}
	fmt.Fprintln(m.w, "## Commit messages")
	fmt.Fprintln(m.w)
	m.provenance(a, adomain.CategoryCommitMessages, sourceLabel(fb.Source))
	fmt.Fprintf(m.w, "Good %s, needs work %s.\n\n", ratio(fb.GoodMessages, fb.TotalCommits), ratio(fb.PoorMessages, fb.TotalCommits))
	m.bullets(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		fmt.Fprintf(m.w, "- :white_check_mark: `%s` %s: %s\n", shortRef(e.SHA), pstrings.FirstLine(e.Message), e.Reason)
	}
	for _, e := range fb.ExamplesPoor {
		fmt.Fprintf(m.w, "- :warning: `%s` %s: %s", shortRef(e.SHA), pstrings.FirstLine(e.Message), e.Reason)
		if e.Suggestion != "" {
			fmt.Fprintf(m.w, " (try: %s)", e.Suggestion)
		}
		fmt.Fprintln(m.w)
	}
	fmt.Fprintln(m.w)
}

func (m *Markdown) titles(a *adomain.Report) {
	fb := a.Titles
	if fb == nil {
		return
	}
	fmt.Fprintln(m.w, "## Pull request titles")
	fmt.Fprintln(m.w)
	m.provenance(a, adomain.CategoryPullTitles, sourceLabel(fb.Source))
	fmt.Fprintf(m.w, "Clear %s, vague %s.\n\n", ratio(fb.ClearTitles, fb.TotalPulls), ratio(fb.VagueTitles, fb.TotalPulls))
	m.bullets(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		fmt.Fprintf(m.w, "- :white_check_mark: #%d %s: %s\n", e.Number, e.Title, e.Reason)
	}
	for _, e := range fb.ExamplesPoor {
		fmt.Fprintf(m.w, "- :warning: #%d %s: %s", e.Number, e.Title, e.Reason)
		if e.Suggestion != "" {
			fmt.Fprintf(m.w, " (try: %s)", e.Suggestion)
		}
		fmt.Fprintln(m.w)
	}
	fmt.Fprintln(m.w)
}

func (m *Markdown) reviews(a *adomain.Report) {
	fb := a.Reviews
	if fb == nil {
		return
	}
	fmt.Fprintln(m.w, "## Review tone")
	fmt.Fprintln(m.w)
	m.provenance(a, adomain.CategoryReviewTone, sourceLabel(fb.Source))
	fmt.Fprintf(m.w, "Constructive %d, harsh %d, neutral %d (of %d reviews).\n\n", fb.Constructive, fb.Harsh, fb.Neutral, fb.TotalReviews)
	m.bullets(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		fmt.Fprintf(m.w, "- :white_check_mark: PR #%d (%s): %s", e.PullNumber, e.Author, pstrings.Truncate(e.Comment, excerptLen))
		if len(e.Strengths) > 0 {
			fmt.Fprintf(m.w, " (%s)", strings.Join(e.Strengths, "; "))
		}
		fmt.Fprintln(m.w)
	}
	for _, e := range fb.ExamplesImprove {
		fmt.Fprintf(m.w, "- :warning: PR #%d (%s): %s", e.PullNumber, e.Author, pstrings.Truncate(e.Comment, excerptLen))
		if len(e.Issues) > 0 {
			fmt.Fprintf(m.w, " (%s)", strings.Join(e.Issues, "; "))
		}
		if e.Improved != "" {
			fmt.Fprintf(m.w, " (try: %s)", pstrings.Truncate(e.Improved, excerptLen))
		}
		fmt.Fprintln(m.w)
	}
	fmt.Fprintln(m.w)
}

func (m *Markdown) issues(a *adomain.Report) {
	fb := a.Issues
	if fb == nil {
		return
	}
	fmt.Fprintln(m.w, "## Issue quality")
	fmt.Fprintln(m.w)
	m.provenance(a, adomain.CategoryIssueQuality, sourceLabel(fb.Source))
	fmt.Fprintf(m.w, "Well described %s, needs detail %s.\n\n", ratio(fb.WellDescribed, fb.TotalIssues), ratio(fb.PoorlyDescribed, fb.TotalIssues))
	m.bullets(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		fmt.Fprintf(m.w, "- :white_check_mark: #%d %s", e.Number, e.Title)
		if len(e.Strengths) > 0 {
			fmt.Fprintf(m.w, " (%s)", strings.Join(e.Strengths, "; "))
		}
		fmt.Fprintln(m.w)
	}
	for _, e := range fb.ExamplesPoor {
		fmt.Fprintf(m.w, "- :warning: #%d %s", e.Number, e.Title)
		if len(e.Missing) > 0 {
			fmt.Fprintf(m.w, " (missing: %s)", strings.Join(e.Missing, "; "))
		}
		if e.Suggestion != "" {
			fmt.Fprintf(m.w, " (try: %s)", e.Suggestion)
		}
		fmt.Fprintln(m.w)
	}
	fmt.Fprintln(m.w)
}

func (m *Markdown) trends(res *cdomain.Result) {
	ins := trends.BuildInsights(res.Monthly)
	if ins != nil {
		fmt.Fprintln(m.w, "## Activity trends")
		fmt.Fprintln(m.w)
		m.bullets(ins.Insights)
		fmt.Fprintln(m.w, "| Month | Commits | Pull requests | Reviews | Issues |")
		fmt.Fprintln(m.w, "|-------|---------|---------------|---------|--------|")
		for _, mt := range res.Monthly {
			fmt.Fprintf(m.w, "| %s | %d | %d | %d | %d |\n", mt.Month, mt.Commits, mt.PullRequests, mt.Reviews, mt.Issues)
		}
		fmt.Fprintln(m.w)
	}

	if ts := res.TechStack; ts != nil && len(ts.TopLanguages) > 0 {
		fmt.Fprintln(m.w, "## Tech stack")
		fmt.Fprintln(m.w)
		fmt.Fprintf(m.w, "Top languages: %s (diversity %.2f).\n\n", strings.Join(ts.TopLanguages, ", "), ts.DiversityScore)
	}

	if cl := res.Collaboration; cl != nil && cl.UniqueCollaborators > 0 {
		fmt.Fprintln(m.w, "## Collaboration")
		fmt.Fprintln(m.w)
		fmt.Fprintf(m.w, "%d reviews across %d reviewers; most active: %s.\n\n",
			cl.ReviewsReceived, cl.UniqueCollaborators, strings.Join(cl.TopReviewers, ", "))
	}
}

func (m *Markdown) spotlight(res *cdomain.Result) {
	if len(res.Examples) == 0 {
		return
	}
	fmt.Fprintln(m.w, "## Pull request spotlight")
	fmt.Fprintln(m.w)
	for _, pr := range res.Examples {
		link := fmt.Sprintf("#%d", pr.Number)
		if pr.URL != "" {
			link = fmt.Sprintf("[#%d](%s)", pr.Number, pr.URL)
		}
		fmt.Fprintf(m.w, "- %s %s by %s (+%d/-%d)\n", link, pr.Title, pr.Author, pr.Additions, pr.Deletions)
	}
	fmt.Fprintln(m.w)
}

func (m *Markdown) bullets(lines []string) {
	if len(lines) == 0 {
		return
	}
	for _, s := range lines {
		fmt.Fprintf(m.w, "- %s\n", s)
	}
	fmt.Fprintln(m.w)
}
