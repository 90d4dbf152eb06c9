package heuristic

import (
	"regexp"
	"strings"

	"retroscope/internal/core/feedback"
)

// Tone markers, matched over normalized (lowercased, width-folded) bodies.
// Each list entry counts once toward the score
var (
	reviewConstructive = []*regexp.Regexp{
		regexp.MustCompile(`what if|how about|consider|suggest|recommend`),
		regexp.MustCompile(`i think|it seems|looks like|might be`),
		regexp.MustCompile(`could we|shall we|let's try|worth trying`),
		regexp.MustCompile(`\?`),
		regexp.MustCompile(`would be better|would be nicer|even better`),
		regexp.MustCompile(`for example|for instance|e\.g\.|like this|as follows`),
		regexp.MustCompile(`👍|✅|💯|🎉|😊|👏`),
	}
	reviewHarsh = []*regexp.Regexp{
		regexp.MustCompile(`wrong|incorrect|broken|makes no sense`),
		regexp.MustCompile(`you must|always|never|absolutely|mandatory`),
		regexp.MustCompile(`why did you|why would you`),
		regexp.MustCompile(`terrible|awful|horrible|worst`),
		regexp.MustCompile(`redo|rewrite this|do it again`),
	}
	reviewPositive = []*regexp.Regexp{
		regexp.MustCompile(`good|great|excellent|nice|thanks|thank you|well done`),
		regexp.MustCompile(`clear|clean|concise|efficient|effective`),
		regexp.MustCompile(`lgtm|looks good|ship it`),
	}

	// Named markers powering strengths, issues and the softened rewrite.
	// Case-insensitive because soften runs over the raw body
	suggestionMarkers = regexp.MustCompile(`(?i)what if|how about|consider|suggest|recommend`)
	exampleMarkers    = regexp.MustCompile(`(?i)for example|for instance|e\.g\.|like this|as follows`)
	positiveEmojis    = regexp.MustCompile(`👍|✅|💯|🎉|😊|👏`)
	positiveWords     = regexp.MustCompile(`(?i)good|great|excellent|nice|thanks|thank you|well done`)
	harshWords        = regexp.MustCompile(`(?i)wrong|incorrect|broken|terrible|awful|horrible`)
	demandingWords    = regexp.MustCompile(`(?i)you must|absolutely|mandatory|redo|do it again`)
)

// Reviews scores review comments for tone. Comments with empty bodies are
// counted in the total but classified in no bucket
func (s *Scorer) Reviews(reviews []feedback.ReviewSample) feedback.ReviewFeedback {
	out := feedback.ReviewFeedback{
		Source:          feedback.SourceHeuristic,
		TotalReviews:    len(reviews),
		ExamplesGood:    []feedback.ReviewExample{},
		ExamplesImprove: []feedback.ReviewExample{},
	}

	withEmoji := 0
	for _, r := range reviews {
		if positiveEmojis.MatchString(r.Body) {
			withEmoji++
		}

		raw := strings.TrimSpace(r.Body)
		body := s.n.Normalize(raw)
		if body == "" {
			continue
		}

		score := 0
		var strengths, issues []string

		if c := countMatches(reviewConstructive, body); c > 0 {
			score += c
			if suggestionMarkers.MatchString(body) {
				strengths = append(strengths, "uses suggesting phrasing instead of commands")
			}
			if exampleMarkers.MatchString(body) {
				strengths = append(strengths, "backs the feedback with a concrete example")
			}
			if positiveEmojis.MatchString(body) {
				strengths = append(strengths, "emojis keep the tone friendly")
			}
		}
		if h := countMatches(reviewHarsh, body); h > 0 {
			score -= 2 * h
			if harshWords.MatchString(body) {
				issues = append(issues, "blunt negative wording can land harder than intended")
			}
			if demandingWords.MatchString(body) {
				issues = append(issues, "commanding phrasing can read as pressure")
			}
		}
		if p := countMatches(reviewPositive, body); p > 0 {
			score += p
			if positiveWords.MatchString(body) {
				strengths = append(strengths, "includes positive reinforcement")
			}
		}

		switch {
		case score >= goodScore:
			out.Constructive++
			if len(out.ExamplesGood) < maxExamples && len(strengths) > 0 {
				out.ExamplesGood = append(out.ExamplesGood, feedback.ReviewExample{
					PullNumber: r.PullNumber,
					Author:     r.Author,
					Comment:    clip(raw, 150),
					URL:        r.URL,
					Strengths:  firstN(strengths, 3),
				})
			}
		case score <= -goodScore:
			out.Harsh++
			if len(out.ExamplesImprove) < maxExamples {
				if len(issues) == 0 {
					issues = []string{"softer phrasing would carry the same point"}
				}
				out.ExamplesImprove = append(out.ExamplesImprove, feedback.ReviewExample{
					PullNumber: r.PullNumber,
					Author:     r.Author,
					Comment:    clip(raw, 150),
					URL:        r.URL,
					Issues:     firstN(issues, 3),
					Improved:   clip(soften(raw), 200),
				})
			}
		default:
			out.Neutral++
		}
	}

	out.Suggestions = reviewSuggestions(out, len(reviews), withEmoji)
	return out
}

// soften rewrites the bluntest phrasings; a rough sketch, not grammar-aware
func soften(body string) string {
	out := harshWords.ReplaceAllString(body, "could be improved")
	return demandingWords.ReplaceAllString(out, "it might be worth")
}

func reviewSuggestions(out feedback.ReviewFeedback, total, withEmoji int) []string {
	var sugg []string
	if out.Harsh > 0 {
		sugg = append(sugg, `Prefer suggestions over commands ("do X" reads softer as "what if we tried X?").`)
	}
	if float64(out.Constructive) < float64(total)*0.5 {
		sugg = append(sugg, "Pair criticism with a concrete improvement and an example.")
	}
	if float64(withEmoji) < float64(total)*0.3 {
		sugg = append(sugg, "A positive note or emoji keeps the review tone friendly.")
	}
	if len(sugg) == 0 {
		sugg = []string{
			"Keep review comments constructive and respectful.",
			"Include concrete improvement suggestions.",
			"Mix positive feedback in with the critique.",
		}
	}
	return sugg
}
