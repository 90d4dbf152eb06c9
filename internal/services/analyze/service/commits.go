package service

import (
	"context"

	"retroscope/internal/core/feedback"
	"retroscope/internal/services/analyze/domain"
)

// maxExamples caps quoted examples per side, matching the prompt contract
const maxExamples = 3

// commitPayload is the JSON shape the model must return for commit analysis.
// Counts are pointers so a missing field fails validation instead of
// reading as zero
type commitPayload struct {
	GoodCount    *int                   `json:"good_count" validate:"required,gte=0"`
	PoorCount    *int                   `json:"poor_count" validate:"required,gte=0"`
	Suggestions  []string               `json:"suggestions"`
	ExamplesGood []commitExamplePayload `json:"examples_good" validate:"dive"`
	ExamplesPoor []commitExamplePayload `json:"examples_poor" validate:"dive"`
}

type commitExamplePayload struct {
	SHA        string `json:"sha" validate:"required"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

func (p commitPayload) toFeedback(total int) feedback.CommitFeedback {
	out := feedback.CommitFeedback{
		Source:       feedback.SourceLLM,
		TotalCommits: total,
		GoodMessages: *p.GoodCount,
		PoorMessages: *p.PoorCount,
		Suggestions:  emptyToSlice(p.Suggestions),
		ExamplesGood: []feedback.CommitExample{},
		ExamplesPoor: []feedback.CommitExample{},
	}
	for _, e := range capExamples(p.ExamplesGood) {
		out.ExamplesGood = append(out.ExamplesGood, feedback.CommitExample{
			SHA: e.SHA, Message: e.Message, Reason: e.Reason,
		})
	}
	for _, e := range capExamples(p.ExamplesPoor) {
		out.ExamplesPoor = append(out.ExamplesPoor, feedback.CommitExample{
			SHA: e.SHA, Message: e.Message, Reason: e.Reason, Suggestion: e.Suggestion,
		})
	}
	return out
}

func (s *Service) analyzeCommits(ctx context.Context, in domain.Input) (func(*domain.Report), error) {
	const category = domain.CategoryCommitMessages

	sample, sampling := sampleItems(in.Commits, s.Cfg.SampleCommits)
	if len(sample) == 0 {
		return func(r *domain.Report) { r.Sampling[category] = sampling }, nil
	}

	messages, truncated := commitPrompt(sample)
	sampling.TruncatedItems = truncated

	var fb feedback.CommitFeedback
	payload, err := completePayload[commitPayload](ctx, s, category, messages)
	if err != nil {
		ok, ferr := s.fallback(ctx, category, err)
		if !ok {
			return nil, ferr
		}
		fb = s.heur.Commits(sample)
	} else {
		fb = payload.toFeedback(len(sample))
	}

	return func(r *domain.Report) {
		r.Commits = &fb
		r.Sampling[category] = sampling
	}, nil
}

// sampleItems takes the newest-first prefix of items up to limit and starts
// the category's sampling record
func sampleItems[T any](items []T, limit int) ([]T, domain.Sampling) {
	sampling := domain.Sampling{TotalItems: len(items)}
	if len(items) > limit {
		items = items[:limit]
	}
	sampling.SampledItems = len(items)
	return items, sampling
}

// capExamples bounds a model-supplied example list
func capExamples[T any](xs []T) []T {
	if len(xs) > maxExamples {
		return xs[:maxExamples]
	}
	return xs
}

// emptyToSlice keeps JSON output arrays, never null
func emptyToSlice(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
