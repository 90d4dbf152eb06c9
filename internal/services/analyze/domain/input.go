package domain

import (
	"retroscope/internal/core/feedback"
	collect "retroscope/internal/services/collect/domain"
)

// FromCollection projects a collection result into analysis samples.
// Resources that failed to collect simply contribute no samples
func FromCollection(res *collect.Result) Input {
	in := Input{Repo: res.Repo}
	for _, c := range res.Commits {
		in.Commits = append(in.Commits, feedback.CommitSample{SHA: c.SHA, Message: c.Message})
	}
	for _, p := range res.Pulls {
		in.Titles = append(in.Titles, feedback.TitleSample{Number: p.Number, Title: p.Title})
	}
	for _, r := range res.Reviews {
		in.Reviews = append(in.Reviews, feedback.ReviewSample{PullNumber: r.PullNumber, Author: r.Author, Body: r.Body, URL: r.URL})
	}
	for _, i := range res.Issues {
		in.Issues = append(in.Issues, feedback.IssueSample{Number: i.Number, Title: i.Title, Body: i.Body})
	}
	return in
}
