package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"retroscope/internal/adapters/github"
	"retroscope/internal/platform/logger"
	"retroscope/internal/services/collect/domain"

	"github.com/sourcegraph/conc/pool"
)

// reviewPullPage caps how many recent pulls the review collector walks
const reviewPullPage = 50

// collectReviews lists the newest pulls itself so a pull collector failure
// cannot take reviews down with it, then fetches reviews per pull on a
// bounded pool. Empty bodies, bot authors, and reviews submitted before the
// window are skipped; pulls whose reviews cannot be fetched are tolerated
func (s *Service) collectReviews(ctx context.Context, in domain.RunInput, since time.Time, limit int) ([]domain.Review, error) {
	numbers, err := s.reviewCandidates(ctx, in, since)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Review, 0, limit)
	if len(numbers) == 0 {
		return out, nil
	}

	slots := make([][]domain.Review, len(numbers))
	p := pool.New().WithMaxGoroutines(s.Cfg.DetailWorkers).WithContext(ctx)
	for i, number := range numbers {
		p.Go(func(ctx context.Context) error {
			reviews, err := s.API.ListReviews(ctx, in.Repo, number)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int("number", number).Msg("review fetch failed, skipping pull")
				return nil
			}

			local := make([]domain.Review, 0, len(reviews))
			for j := range reviews {
				rv := &reviews[j]
				body := strings.TrimSpace(rv.Body)
				if body == "" {
					continue
				}
				if in.Filters.ExcludesAuthor(accountParts(rv.User)) {
					continue
				}
				if rv.SubmittedAt.Before(since) {
					continue
				}
				login, _ := accountParts(rv.User)
				local = append(local, domain.Review{
					PullNumber:  number,
					Author:      login,
					Body:        body,
					State:       rv.State,
					SubmittedAt: rv.SubmittedAt,
					URL:         rv.HTMLURL,
				})
			}
			slots[i] = local
			return nil
		})
	}
	_ = p.Wait()

	// flatten in pull order so the cap lands on the newest activity
	for _, local := range slots {
		for _, rv := range local {
			if len(out) >= limit {
				return out, nil
			}
			out = append(out, rv)
		}
	}
	return out, nil
}

// reviewCandidates returns the numbers of the newest pulls inside the window,
// capped at reviewPullPage. The author path lists through the issues API
func (s *Service) reviewCandidates(ctx context.Context, in domain.RunInput, since time.Time) ([]int, error) {
	query := listQuery()
	query.Set("per_page", strconv.Itoa(reviewPullPage))

	var numbers []int
	if in.Author != "" {
		query.Set("creator", in.Author)
		issues, err := s.API.ListIssues(ctx, in.Repo, query, func(i github.Issue) bool {
			return i.CreatedAt.Before(since)
		})
		if err != nil {
			return nil, err
		}
		numbers = make([]int, 0, len(issues))
		for i := range issues {
			if !issues[i].IsPullRequest() {
				continue
			}
			numbers = append(numbers, issues[i].Number)
		}
	} else {
		pulls, err := s.API.ListPulls(ctx, in.Repo, query, func(pr github.PullRequest) bool {
			return pr.CreatedAt.Before(since)
		})
		if err != nil {
			return nil, err
		}
		numbers = make([]int, 0, len(pulls))
		for i := range pulls {
			numbers = append(numbers, pulls[i].Number)
		}
	}

	if len(numbers) > reviewPullPage {
		numbers = numbers[:reviewPullPage]
	}
	return numbers, nil
}
