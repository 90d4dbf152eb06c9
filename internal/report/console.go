package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"retroscope/internal/core/feedback"
	"retroscope/internal/core/trends"
	pstrings "retroscope/internal/platform/strings"
	adomain "retroscope/internal/services/analyze/domain"
	cdomain "retroscope/internal/services/collect/domain"
)

// excerptLen caps quoted text in console sections
const excerptLen = 96

// Console renders a run for the terminal
type Console struct {
	w       io.Writer
	colored bool
}

// NewConsole creates a console renderer. colored toggles ANSI styling
func NewConsole(w io.Writer, colored bool) *Console {
	return &Console{w: w, colored: colored}
}

// Render writes the whole report: collection summary, partial-failure
// warnings, the four feedback sections, and the trend blocks
func (c *Console) Render(res *cdomain.Result, analysis *adomain.Report) {
	c.header(res)
	c.summaryTable(res)
	c.failures(res)

	if analysis != nil {
		c.commitSection(analysis)
		c.titleSection(analysis)
		c.reviewSection(analysis)
		c.issueSection(analysis)
	}

	c.trendSection(res)
	c.spotlight(res)
}

func (c *Console) header(res *cdomain.Result) {
	title := fmt.Sprintf("Retrospective for %s", res.Repo)
	c.bold("%s\n%s\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(c.w, "Window: %s to %s (%d months)\n",
		res.Since.Format("2006-01-02"), res.Until.Format("2006-01-02"), res.Months)
	fmt.Fprintf(c.w, "Run: %s, collected %s\n\n", res.RunID, res.CollectedAt.Format("2006-01-02 15:04 MST"))
}

func (c *Console) summaryTable(res *cdomain.Result) {
	table := tablewriter.NewTable(c.w,
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
	table.Header([]string{"Resource", "Collected", "Status"})
	for _, r := range cdomain.Resources() {
		status := "ok"
		if st := res.Status[r]; st.Failed {
			status = "FAILED (" + st.ErrClass + ")"
		}
		table.Append([]string{resourceLabel(r), strconv.Itoa(res.Count(r)), status})
	}
	table.Render()
	fmt.Fprintln(c.w)
}

func (c *Console) failures(res *cdomain.Result) {
	if !res.Partial() {
		return
	}
	for _, r := range cdomain.Resources() {
		if st := res.Status[r]; st.Failed {
			c.warn("! %s collection incomplete: %s\n", resourceLabel(r), st.Err)
		}
	}
	c.warn("Counts above reflect only what was collected.\n\n")
}

func (c *Console) commitSection(a *adomain.Report) {
	fb := a.Commits
	if fb == nil {
		return
	}
	c.sectionHead("Commit messages", fb.Source, a.Sampling[adomain.CategoryCommitMessages])
	fmt.Fprintf(c.w, "Good %s, needs work %s\n", ratio(fb.GoodMessages, fb.TotalCommits), ratio(fb.PoorMessages, fb.TotalCommits))
	c.suggestions(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		c.good("  + %s %s\n", shortRef(e.SHA), pstrings.Truncate(pstrings.FirstLine(e.Message), excerptLen))
		c.dim("      %s\n", e.Reason)
	}
	for _, e := range fb.ExamplesPoor {
		c.warn("  - %s %s\n", shortRef(e.SHA), pstrings.Truncate(pstrings.FirstLine(e.Message), excerptLen))
		c.dim("      %s\n", e.Reason)
		if e.Suggestion != "" {
			c.dim("      try: %s\n", e.Suggestion)
		}
	}
	fmt.Fprintln(c.w)
}

func (c *Console) titleSection(a *adomain.Report) {
	fb := a.Titles
	if fb == nil {
		return
	}
	c.sectionHead("Pull request titles", fb.Source, a.Sampling[adomain.CategoryPullTitles])
	fmt.Fprintf(c.w, "Clear %s, vague %s\n", ratio(fb.ClearTitles, fb.TotalPulls), ratio(fb.VagueTitles, fb.TotalPulls))
	c.suggestions(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		c.good("  + #%d %s\n", e.Number, pstrings.Truncate(e.Title, excerptLen))
		c.dim("      %s\n", e.Reason)
	}
	for _, e := range fb.ExamplesPoor {
		c.warn("  - #%d %s\n", e.Number, pstrings.Truncate(e.Title, excerptLen))
		c.dim("      %s\n", e.Reason)
		if e.Suggestion != "" {
			c.dim("      try: %s\n", e.Suggestion)
		}
	}
	fmt.Fprintln(c.w)
}

func (c *Console) reviewSection(a *adomain.Report) {
	fb := a.Reviews
	if fb == nil {
		return
	}
	c.sectionHead("Review tone", fb.Source, a.Sampling[adomain.CategoryReviewTone])
	fmt.Fprintf(c.w, "Constructive %d, harsh %d, neutral %d (of %d)\n", fb.Constructive, fb.Harsh, fb.Neutral, fb.TotalReviews)
	c.suggestions(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		c.good("  + PR #%d (%s): %s\n", e.PullNumber, e.Author, pstrings.Truncate(e.Comment, excerptLen))
		if len(e.Strengths) > 0 {
			c.dim("      %s\n", strings.Join(e.Strengths, "; "))
		}
	}
	for _, e := range fb.ExamplesImprove {
		c.warn("  - PR #%d (%s): %s\n", e.PullNumber, e.Author, pstrings.Truncate(e.Comment, excerptLen))
		if len(e.Issues) > 0 {
			c.dim("      %s\n", strings.Join(e.Issues, "; "))
		}
		if e.Improved != "" {
			c.dim("      try: %s\n", pstrings.Truncate(e.Improved, excerptLen))
		}
	}
	fmt.Fprintln(c.w)
}

func (c *Console) issueSection(a *adomain.Report) {
	fb := a.Issues
	if fb == nil {
		return
	}
	c.sectionHead("Issue quality", fb.Source, a.Sampling[adomain.CategoryIssueQuality])
	fmt.Fprintf(c.w, "Well described %s, needs detail %s\n", ratio(fb.WellDescribed, fb.TotalIssues), ratio(fb.PoorlyDescribed, fb.TotalIssues))
	c.suggestions(fb.Suggestions)
	for _, e := range fb.ExamplesGood {
		c.good("  + #%d %s\n", e.Number, pstrings.Truncate(e.Title, excerptLen))
		if len(e.Strengths) > 0 {
			c.dim("      %s\n", strings.Join(e.Strengths, "; "))
		}
	}
	for _, e := range fb.ExamplesPoor {
		c.warn("  - #%d %s\n", e.Number, pstrings.Truncate(e.Title, excerptLen))
		if len(e.Missing) > 0 {
			c.dim("      missing: %s\n", strings.Join(e.Missing, "; "))
		}
		if e.Suggestion != "" {
			c.dim("      try: %s\n", e.Suggestion)
		}
	}
	fmt.Fprintln(c.w)
}

func (c *Console) trendSection(res *cdomain.Result) {
	ins := trends.BuildInsights(res.Monthly)
	if ins != nil {
		c.bold("Activity trends\n")
		for _, line := range ins.Insights {
			fmt.Fprintf(c.w, "  %s\n", line)
		}
		fmt.Fprintln(c.w)
	}

	if ts := res.TechStack; ts != nil && len(ts.TopLanguages) > 0 {
		c.bold("Tech stack\n")
		fmt.Fprintf(c.w, "  Top languages: %s (diversity %.2f)\n\n", strings.Join(ts.TopLanguages, ", "), ts.DiversityScore)
	}

	if cl := res.Collaboration; cl != nil && cl.UniqueCollaborators > 0 {
		c.bold("Collaboration\n")
		fmt.Fprintf(c.w, "  %d reviews across %d reviewers; most active: %s\n\n",
			cl.ReviewsReceived, cl.UniqueCollaborators, strings.Join(cl.TopReviewers, ", "))
	}
}

func (c *Console) spotlight(res *cdomain.Result) {
	if len(res.Examples) == 0 {
		return
	}
	c.bold("Pull request spotlight\n")
	for _, pr := range res.Examples {
		fmt.Fprintf(c.w, "  #%d %s by %s (+%d/-%d)\n", pr.Number, pstrings.Truncate(pr.Title, excerptLen), pr.Author, pr.Additions, pr.Deletions)
	}
	fmt.Fprintln(c.w)
}

func (c *Console) sectionHead(name string, src feedback.Source, sm adomain.Sampling) {
	c.bold("%s\n", name)
	label := sourceLabel(src)
	if src == feedback.SourceHeuristic {
		c.warn("Source: %s\n", label)
	} else {
		c.dim("Source: %s\n", label)
	}
	if note := samplingNote(sm); note != "" {
		c.dim("Sample: %s\n", note)
	}
}

func (c *Console) suggestions(lines []string) {
	for _, s := range lines {
		fmt.Fprintf(c.w, "  * %s\n", s)
	}
}

func (c *Console) bold(format string, a ...any) { c.styled(color.Bold)(format, a...) }
func (c *Console) good(format string, a ...any) { c.styled(color.FgGreen)(format, a...) }
func (c *Console) warn(format string, a ...any) { c.styled(color.FgYellow)(format, a...) }
func (c *Console) dim(format string, a ...any)  { c.styled(color.Faint)(format, a...) }

func (c *Console) styled(attr color.Attribute) func(string, ...any) {
	if !c.colored {
		return func(format string, a ...any) { fmt.Fprintf(c.w, format, a...) }
	}
	cl := color.New(attr)
	return func(format string, a ...any) { cl.Fprintf(c.w, format, a...) }
}

// shortRef trims a commit hash for display
func shortRef(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
