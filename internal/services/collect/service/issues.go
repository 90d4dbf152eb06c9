package service

import (
	"context"
	"time"

	"retroscope/internal/adapters/github"
	"retroscope/internal/services/collect/domain"
)

// collectIssues lists issues inside the window, skipping pull requests that
// surface in the same listing and filtered authors. The since parameter
// narrows the listing server side; the early stop guards against repos where
// old issues keep getting updated
func (s *Service) collectIssues(ctx context.Context, in domain.RunInput, since time.Time, limit int) ([]domain.Issue, error) {
	query := listQuery()
	query.Set("since", since.Format(time.RFC3339))
	if in.Author != "" {
		query.Set("creator", in.Author)
	}

	items, err := s.API.ListIssues(ctx, in.Repo, query, func(i github.Issue) bool {
		return i.CreatedAt.Before(since)
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Issue, 0, min(len(items), limit))
	for i := range items {
		if len(out) >= limit {
			break
		}
		issue := &items[i]
		if issue.IsPullRequest() {
			continue
		}
		if in.Filters.ExcludesAuthor(accountParts(issue.User)) {
			continue
		}
		login, _ := accountParts(issue.User)
		out = append(out, domain.Issue{
			Number:    issue.Number,
			Title:     issue.Title,
			Body:      issue.Body,
			Author:    login,
			State:     issue.State,
			Labels:    labelNames(issue.Labels),
			CreatedAt: issue.CreatedAt,
			URL:       issue.HTMLURL,
		})
	}
	return out, nil
}

func labelNames(labels []github.Label) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Name)
	}
	return out
}
