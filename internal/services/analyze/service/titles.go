package service

import (
	"context"

	"retroscope/internal/core/feedback"
	"retroscope/internal/services/analyze/domain"
)

// titlePayload is the JSON shape the model must return for PR title analysis
type titlePayload struct {
	ClearCount   *int                  `json:"clear_count" validate:"required,gte=0"`
	VagueCount   *int                  `json:"vague_count" validate:"required,gte=0"`
	Suggestions  []string              `json:"suggestions"`
	ExamplesGood []titleExamplePayload `json:"examples_good" validate:"dive"`
	ExamplesPoor []titleExamplePayload `json:"examples_poor" validate:"dive"`
}

type titleExamplePayload struct {
	Number     int    `json:"number" validate:"required"`
	Title      string `json:"title"`
	Reason     string `json:"reason"`
	Score      int    `json:"score" validate:"gte=0,lte=10"`
	Suggestion string `json:"suggestion"`
}

func (p titlePayload) toFeedback(total int) feedback.TitleFeedback {
	out := feedback.TitleFeedback{
		Source:       feedback.SourceLLM,
		TotalPulls:   total,
		ClearTitles:  *p.ClearCount,
		VagueTitles:  *p.VagueCount,
		Suggestions:  emptyToSlice(p.Suggestions),
		ExamplesGood: []feedback.TitleExample{},
		ExamplesPoor: []feedback.TitleExample{},
	}
	for _, e := range capExamples(p.ExamplesGood) {
		out.ExamplesGood = append(out.ExamplesGood, feedback.TitleExample{
			Number: e.Number, Title: e.Title, Reason: e.Reason, Score: e.Score,
		})
	}
	for _, e := range capExamples(p.ExamplesPoor) {
		out.ExamplesPoor = append(out.ExamplesPoor, feedback.TitleExample{
			Number: e.Number, Title: e.Title, Reason: e.Reason, Suggestion: e.Suggestion,
		})
	}
	return out
}

func (s *Service) analyzeTitles(ctx context.Context, in domain.Input) (func(*domain.Report), error) {
	const category = domain.CategoryPullTitles

	sample, sampling := sampleItems(in.Titles, s.Cfg.SampleTitles)
	if len(sample) == 0 {
		return func(r *domain.Report) { r.Sampling[category] = sampling }, nil
	}

	messages, truncated := titlePrompt(sample)
	sampling.TruncatedItems = truncated

	var fb feedback.TitleFeedback
	payload, err := completePayload[titlePayload](ctx, s, category, messages)
	if err != nil {
		ok, ferr := s.fallback(ctx, category, err)
		if !ok {
			return nil, ferr
		}
		fb = s.heur.Titles(sample)
	} else {
		fb = payload.toFeedback(len(sample))
	}

	return func(r *domain.Report) {
		r.Titles = &fb
		r.Sampling[category] = sampling
	}, nil
}
