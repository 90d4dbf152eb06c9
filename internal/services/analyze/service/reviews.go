package service

import (
	"context"

	"retroscope/internal/core/feedback"
	"retroscope/internal/services/analyze/domain"
)

// reviewPayload is the JSON shape the model must return for tone analysis
type reviewPayload struct {
	ConstructiveCount *int                   `json:"constructive_count" validate:"required,gte=0"`
	HarshCount        *int                   `json:"harsh_count" validate:"required,gte=0"`
	NeutralCount      *int                   `json:"neutral_count" validate:"required,gte=0"`
	Suggestions       []string               `json:"suggestions"`
	ExamplesGood      []reviewExamplePayload `json:"examples_good" validate:"dive"`
	ExamplesImprove   []reviewExamplePayload `json:"examples_improve" validate:"dive"`
}

type reviewExamplePayload struct {
	PullNumber int      `json:"pr_number" validate:"required"`
	Author     string   `json:"author"`
	Comment    string   `json:"comment"`
	Strengths  []string `json:"strengths"`
	Issues     []string `json:"issues"`
	Improved   string   `json:"improved_version"`
}

func (p reviewPayload) toFeedback(sample []feedback.ReviewSample) feedback.ReviewFeedback {
	out := feedback.ReviewFeedback{
		Source:          feedback.SourceLLM,
		TotalReviews:    len(sample),
		Constructive:    *p.ConstructiveCount,
		Harsh:           *p.HarshCount,
		Neutral:         *p.NeutralCount,
		Suggestions:     emptyToSlice(p.Suggestions),
		ExamplesGood:    []feedback.ReviewExample{},
		ExamplesImprove: []feedback.ReviewExample{},
	}
	for _, e := range capExamples(p.ExamplesGood) {
		out.ExamplesGood = append(out.ExamplesGood, feedback.ReviewExample{
			PullNumber: e.PullNumber,
			Author:     e.Author,
			Comment:    e.Comment,
			URL:        reviewURL(sample, e.PullNumber),
			Strengths:  e.Strengths,
		})
	}
	for _, e := range capExamples(p.ExamplesImprove) {
		out.ExamplesImprove = append(out.ExamplesImprove, feedback.ReviewExample{
			PullNumber: e.PullNumber,
			Author:     e.Author,
			Comment:    e.Comment,
			URL:        reviewURL(sample, e.PullNumber),
			Issues:     e.Issues,
			Improved:   e.Improved,
		})
	}
	return out
}

// reviewURL recovers the link for a quoted review from the sample it was
// drawn from; the model is not asked to echo URLs back
func reviewURL(sample []feedback.ReviewSample, pullNumber int) string {
	for i := range sample {
		if sample[i].PullNumber == pullNumber {
			return sample[i].URL
		}
	}
	return ""
}

func (s *Service) analyzeReviews(ctx context.Context, in domain.Input) (func(*domain.Report), error) {
	const category = domain.CategoryReviewTone

	sample, sampling := sampleItems(in.Reviews, s.Cfg.SampleReviews)
	if len(sample) == 0 {
		return func(r *domain.Report) { r.Sampling[category] = sampling }, nil
	}

	messages, truncated := reviewPrompt(sample)
	sampling.TruncatedItems = truncated

	var fb feedback.ReviewFeedback
	payload, err := completePayload[reviewPayload](ctx, s, category, messages)
	if err != nil {
		ok, ferr := s.fallback(ctx, category, err)
		if !ok {
			return nil, ferr
		}
		fb = s.heur.Reviews(sample)
	} else {
		fb = payload.toFeedback(sample)
	}

	return func(r *domain.Report) {
		r.Reviews = &fb
		r.Sampling[category] = sampling
	}, nil
}
