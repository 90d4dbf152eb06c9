package heuristic

import (
	"regexp"
	"strings"

	"retroscope/internal/core/feedback"
)

var (
	reproPattern       = regexp.MustCompile(`(?i)(steps to reproduce|how to reproduce)`)
	expectedPattern    = regexp.MustCompile(`(?i)(expected|actual)`)
	environmentPattern = regexp.MustCompile(`(?i)(environment|version|os|browser)`)
	screenshotPattern  = regexp.MustCompile(`(?i)(screenshot|image|!\[)`)
	referencePattern   = regexp.MustCompile(`(?i)(#\d+|http|related)`)

	bugKeywords      = regexp.MustCompile(`\b(bug|error|crash|fail|broken|issue)\b`)
	featureKeywords  = regexp.MustCompile(`\b(feature|enhancement|improve|add|request)\b`)
	questionKeywords = regexp.MustCompile(`\b(question|how|why|documentation|docs)\b`)
)

type issueScore struct {
	score     int
	strengths []string
	missing   []string
}

// scoreIssue rates one issue body: detail length, reproduction steps,
// expected/actual comparison, environment info, visuals, code and references.
// Missing elements are only recorded while the running score is still failing
func scoreIssue(body string) issueScore {
	var is issueScore

	switch n := runeLen(body); {
	case n > issueBodyDetailed:
		is.score += 2
		is.strengths = append(is.strengths, "detailed description")
	case n > issueBodyShort:
		is.score++
	default:
		is.missing = append(is.missing, "body too short")
	}

	checks := []struct {
		re       *regexp.Regexp
		strength string
		missing  string
		points   int
	}{
		{reproPattern, "includes reproduction steps", "reproduction steps", 2},
		{expectedPattern, "compares expected and actual results", "expected/actual results", 1},
		{environmentPattern, "includes environment info", "environment info", 1},
		{screenshotPattern, "attaches a screenshot or image", "", 1},
	}
	for _, c := range checks {
		if c.re.MatchString(body) {
			is.score += c.points
			is.strengths = append(is.strengths, c.strength)
		} else if c.missing != "" && is.score < issueGoodScore-1 {
			is.missing = append(is.missing, c.missing)
		}
	}

	if strings.ContainsRune(body, '`') {
		is.score++
		is.strengths = append(is.strengths, "includes a code sample")
	}
	if referencePattern.MatchString(body) {
		is.score++
	}
	return is
}

// detectIssueType guesses bug, feature or question from the combined text
func detectIssueType(title, body string) string {
	text := strings.ToLower(title + " " + body)
	switch {
	case bugKeywords.MatchString(text):
		return "bug"
	case featureKeywords.MatchString(text):
		return "feature"
	case questionKeywords.MatchString(text):
		return "question"
	default:
		return "other"
	}
}

// Issues scores issue descriptions for completeness
func (s *Scorer) Issues(issues []feedback.IssueSample) feedback.IssueFeedback {
	out := feedback.IssueFeedback{
		Source:       feedback.SourceHeuristic,
		TotalIssues:  len(issues),
		Suggestions:  issueSuggestions(),
		ExamplesGood: []feedback.IssueExample{},
		ExamplesPoor: []feedback.IssueExample{},
	}
	for _, it := range issues {
		title := strings.TrimSpace(it.Title)
		body := strings.TrimSpace(it.Body)

		is := scoreIssue(body)
		if is.score >= issueGoodScore {
			out.WellDescribed++
			if len(out.ExamplesGood) < maxExamples {
				out.ExamplesGood = append(out.ExamplesGood, feedback.IssueExample{
					Number:       it.Number,
					Title:        title,
					Type:         detectIssueType(title, body),
					Strengths:    firstN(is.strengths, 3),
					Completeness: min(10, is.score),
				})
			}
			continue
		}
		out.PoorlyDescribed++
		if len(out.ExamplesPoor) < maxExamples {
			out.ExamplesPoor = append(out.ExamplesPoor, feedback.IssueExample{
				Number:     it.Number,
				Title:      title,
				Missing:    is.missing,
				Suggestion: "use the issue template, or add reproduction steps, expected/actual results, and environment info",
			})
		}
	}
	return out
}

func issueSuggestions() []string {
	return []string{
		"Describe the problem in detail (at least 100 characters).",
		"Bug reports: include reproduction steps, expected and actual results, and environment info.",
		"Feature requests: explain the problem, the proposed solution, and a usage scenario.",
		"Show, don't tell: use code blocks and screenshots.",
		"Reference related issues and PRs (#123).",
	}
}
