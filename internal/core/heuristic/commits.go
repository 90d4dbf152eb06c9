package heuristic

import (
	"fmt"
	"regexp"
	"strings"

	"retroscope/internal/core/feedback"
)

// Subject-line shapes. Poor patterns run over the lowered first line
var (
	commitGoodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore|perf|ci|build|revert)(\(.+\))?: .+`),
		regexp.MustCompile(`(?i)^(add|fix|update|refactor|remove|implement|improve|optimize) [a-z].+`),
		regexp.MustCompile(`(?i)^[a-z][a-z]+ .+ (#\d+|issue|pr)`),
	}
	commitPoorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(wip|tmp|test|debug|asdf|aaa|zzz)`),
		regexp.MustCompile(`^fix$|^update$|^bug$`),
		regexp.MustCompile(`^.{1,5}$`),
		regexp.MustCompile(`^.{150,}`),
	}

	conventionalCommit = regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore|perf|ci|build|revert)`)
	imperativeCommit   = regexp.MustCompile(`^(Add|Fix|Update|Refactor|Remove|Implement|Improve|Optimize)`)
)

type commitScore struct {
	score     int
	firstLine string
	tooShort  bool
	tooLong   bool
	vague     bool
}

// scoreCommit rates one commit message: subject length in range +1,
// conventional or imperative shape +2, vague markers -2, explanatory body +1
func scoreCommit(msg string) commitScore {
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	cs := commitScore{firstLine: lines[0]}

	n := runeLen(cs.firstLine)
	switch {
	case n >= commitMinLength && n <= commitMaxLength:
		cs.score++
	case n < commitMinLength:
		cs.tooShort = true
	case n > commitTooLong:
		cs.tooLong = true
	}

	if matchAny(commitGoodPatterns, cs.firstLine) {
		cs.score += 2
	}
	if matchAny(commitPoorPatterns, strings.ToLower(cs.firstLine)) {
		cs.score -= 2
		cs.vague = true
	}

	// A body paragraph after the blank separator line counts as explanation
	if len(lines) > 2 && runeLen(strings.TrimSpace(lines[2])) > commitMinBodyLen {
		cs.score++
	}
	return cs
}

// Commits scores commit messages and quotes the clearest wins and misses
func (s *Scorer) Commits(commits []feedback.CommitSample) feedback.CommitFeedback {
	out := feedback.CommitFeedback{
		Source:       feedback.SourceHeuristic,
		TotalCommits: len(commits),
		Suggestions:  commitSuggestions(),
		ExamplesGood: []feedback.CommitExample{},
		ExamplesPoor: []feedback.CommitExample{},
	}
	for _, c := range commits {
		cs := scoreCommit(c.Message)
		if cs.score >= goodScore {
			out.GoodMessages++
			if len(out.ExamplesGood) < maxExamples {
				out.ExamplesGood = append(out.ExamplesGood, goodCommitExample(c.SHA, cs))
			}
			continue
		}
		out.PoorMessages++
		if len(out.ExamplesPoor) < maxExamples {
			out.ExamplesPoor = append(out.ExamplesPoor, poorCommitExample(c.SHA, cs))
		}
	}
	return out
}

func goodCommitExample(sha string, cs commitScore) feedback.CommitExample {
	reasons := []string{fmt.Sprintf("good subject length (%d chars)", runeLen(cs.firstLine))}
	if conventionalCommit.MatchString(cs.firstLine) {
		reasons = append(reasons, "follows the Conventional Commits format")
	}
	if imperativeCommit.MatchString(cs.firstLine) {
		reasons = append(reasons, "starts with an imperative verb")
	}
	lower := strings.ToLower(cs.firstLine)
	if strings.Contains(cs.firstLine, "#") || strings.Contains(lower, "issue") || strings.Contains(lower, "pr") {
		reasons = append(reasons, "references an issue or PR")
	}
	return feedback.CommitExample{
		SHA:     sha,
		Message: cs.firstLine,
		Reason:  strings.Join(reasons, "; "),
	}
}

func poorCommitExample(sha string, cs commitScore) feedback.CommitExample {
	n := runeLen(cs.firstLine)

	var reasons []string
	if cs.tooShort {
		reasons = append(reasons, fmt.Sprintf("subject too short (%d chars) to explain the change", n))
	}
	if cs.tooLong {
		reasons = append(reasons, fmt.Sprintf("first line too long (%d chars); keep it within 50-72", n))
	}
	if cs.vague {
		reasons = append(reasons, "vague or throwaway wording hides the intent")
	}
	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "does not follow the repository's commit message conventions"
	}

	var suggestion string
	switch {
	case n < commitMinLength:
		suggestion = `describe the change concretely (e.g. "feat: refresh sessions before expiry")`
	case n > commitMaxLength:
		suggestion = "summarize the change in the first line and move detail to the body"
	default:
		suggestion = `use the Conventional Commits format (e.g. "fix(auth): reject expired tokens")`
	}

	return feedback.CommitExample{
		SHA:        sha,
		Message:    cs.firstLine,
		Reason:     reason,
		Suggestion: suggestion,
	}
}

func commitSuggestions() []string {
	return []string{
		"Keep the first line within 50-72 characters.",
		"Use the Conventional Commits format: type(scope): subject.",
		"Start with an imperative verb (Add, Fix, Update, Refactor).",
		"Explain the why, not just the what, in the body.",
		"Reference related issues or PRs (#123, closes #456).",
	}
}
