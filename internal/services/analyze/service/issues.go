package service

import (
	"context"

	"retroscope/internal/core/feedback"
	"retroscope/internal/services/analyze/domain"
)

// issuePayload is the JSON shape the model must return for issue analysis
type issuePayload struct {
	WellDescribedCount   *int                  `json:"well_described_count" validate:"required,gte=0"`
	PoorlyDescribedCount *int                  `json:"poorly_described_count" validate:"required,gte=0"`
	Suggestions          []string              `json:"suggestions"`
	ExamplesGood         []issueExamplePayload `json:"examples_good" validate:"dive"`
	ExamplesPoor         []issueExamplePayload `json:"examples_poor" validate:"dive"`
}

type issueExamplePayload struct {
	Number       int      `json:"number" validate:"required"`
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Strengths    []string `json:"strengths"`
	Completeness int      `json:"completeness_score" validate:"gte=0,lte=10"`
	Missing      []string `json:"missing_elements"`
	Suggestion   string   `json:"suggestion"`
}

func (p issuePayload) toFeedback(total int) feedback.IssueFeedback {
	out := feedback.IssueFeedback{
		Source:          feedback.SourceLLM,
		TotalIssues:     total,
		WellDescribed:   *p.WellDescribedCount,
		PoorlyDescribed: *p.PoorlyDescribedCount,
		Suggestions:     emptyToSlice(p.Suggestions),
		ExamplesGood:    []feedback.IssueExample{},
		ExamplesPoor:    []feedback.IssueExample{},
	}
	for _, e := range capExamples(p.ExamplesGood) {
		out.ExamplesGood = append(out.ExamplesGood, feedback.IssueExample{
			Number:       e.Number,
			Title:        e.Title,
			Type:         e.Type,
			Strengths:    e.Strengths,
			Completeness: e.Completeness,
		})
	}
	for _, e := range capExamples(p.ExamplesPoor) {
		out.ExamplesPoor = append(out.ExamplesPoor, feedback.IssueExample{
			Number:     e.Number,
			Title:      e.Title,
			Type:       e.Type,
			Missing:    e.Missing,
			Suggestion: e.Suggestion,
		})
	}
	return out
}

func (s *Service) analyzeIssues(ctx context.Context, in domain.Input) (func(*domain.Report), error) {
	const category = domain.CategoryIssueQuality

	sample, sampling := sampleItems(in.Issues, s.Cfg.SampleIssues)
	if len(sample) == 0 {
		return func(r *domain.Report) { r.Sampling[category] = sampling }, nil
	}

	messages, truncated := issuePrompt(sample)
	sampling.TruncatedItems = truncated

	var fb feedback.IssueFeedback
	payload, err := completePayload[issuePayload](ctx, s, category, messages)
	if err != nil {
		ok, ferr := s.fallback(ctx, category, err)
		if !ok {
			return nil, ferr
		}
		fb = s.heur.Issues(sample)
	} else {
		fb = payload.toFeedback(len(sample))
	}

	return func(r *domain.Report) {
		r.Issues = &fb
		r.Sampling[category] = sampling
	}, nil
}
