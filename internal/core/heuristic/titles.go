package heuristic

import (
	"fmt"
	"regexp"
	"strings"

	"retroscope/internal/core/feedback"
)

var (
	titleClearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\[(feat|fix|docs|style|refactor|test|chore|perf|ci|build)\].+`),
		regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore|perf|ci|build):.+`),
		regexp.MustCompile(`(?i)^(add|fix|update|refactor|remove|implement|improve) .+`),
	}

	// First words that say nothing by themselves
	vagueFirstWords = map[string]struct{}{
		"update": {}, "fix": {}, "change": {}, "modify": {}, "edit": {},
		"misc": {}, "various": {}, "stuff": {}, "things": {}, "code": {}, "work": {},
	}
)

type titleScore struct {
	score    int
	title    string
	tooShort bool
	tooLong  bool
	vague    bool
}

// scoreTitle rates one pull request title: length in range +1, a clear type
// marker +2, a vague unmarked first word -1, enough words for specificity +1
func scoreTitle(title string) titleScore {
	ts := titleScore{title: strings.TrimSpace(title)}

	n := runeLen(ts.title)
	switch {
	case n >= titleMinLength && n <= titleMaxLength:
		ts.score++
	case n < titleMinLength:
		ts.tooShort = true
	default:
		ts.tooLong = true
	}

	clear := matchAny(titleClearPatterns, ts.title)
	if clear {
		ts.score += 2
	}

	words := strings.Fields(ts.title)
	if len(words) > 0 && !clear {
		if _, ok := vagueFirstWords[strings.ToLower(words[0])]; ok {
			ts.score--
			ts.vague = true
		}
	}
	if len(words) >= titleMinWords {
		ts.score++
	}
	return ts
}

// Titles scores pull request titles for clarity
func (s *Scorer) Titles(pulls []feedback.TitleSample) feedback.TitleFeedback {
	out := feedback.TitleFeedback{
		Source:       feedback.SourceHeuristic,
		TotalPulls:   len(pulls),
		Suggestions:  titleSuggestions(),
		ExamplesGood: []feedback.TitleExample{},
		ExamplesPoor: []feedback.TitleExample{},
	}
	for _, p := range pulls {
		ts := scoreTitle(p.Title)
		if ts.score >= goodScore {
			out.ClearTitles++
			if len(out.ExamplesGood) < maxExamples {
				out.ExamplesGood = append(out.ExamplesGood, feedback.TitleExample{
					Number: p.Number,
					Title:  ts.title,
					Reason: "clear, descriptive title",
					Score:  min(10, ts.score*3),
				})
			}
			continue
		}
		out.VagueTitles++
		if len(out.ExamplesPoor) < maxExamples {
			out.ExamplesPoor = append(out.ExamplesPoor, poorTitleExample(p.Number, ts))
		}
	}
	return out
}

func poorTitleExample(number int, ts titleScore) feedback.TitleExample {
	var reasons []string
	if ts.tooShort {
		reasons = append(reasons, "title too short")
	}
	if ts.tooLong {
		reasons = append(reasons, "title too long")
	}
	if ts.vague {
		reasons = append(reasons, "starts with a generic word")
	}
	reason := strings.Join(reasons, ", ")
	if reason == "" {
		reason = "title is ambiguous"
	}

	kind := "feat"
	if words := strings.Fields(ts.title); len(words) > 0 {
		switch w := strings.ToLower(words[0]); w {
		case "feat", "fix", "docs":
			kind = w
		}
	}
	suggested := ts.title
	if runeLen(suggested) <= 10 {
		suggested += " - describe the specific change"
	}

	return feedback.TitleExample{
		Number:     number,
		Title:      ts.title,
		Reason:     reason,
		Suggestion: fmt.Sprintf("[%s] %s", kind, suggested),
	}
}

func titleSuggestions() []string {
	return []string{
		"Keep PR titles between 15 and 80 characters.",
		"Lead with a type marker: [feat], [fix], [docs], [refactor].",
		`Avoid bare generic words like "update" or "fix"; say what changed.`,
		"Start with an imperative verb: Add, Fix, Implement, Refactor.",
		"Name the scope and impact of the change in the title.",
	}
}
