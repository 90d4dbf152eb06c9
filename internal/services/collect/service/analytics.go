package service

import (
	"context"
	"sync"

	"retroscope/internal/core/filter"
	"retroscope/internal/core/trends"
	"retroscope/internal/platform/logger"
	ptime "retroscope/internal/platform/time"
	"retroscope/internal/services/collect/domain"

	"github.com/sourcegraph/conc/pool"
)

// collectAnalytics fills the trend blocks on a settled result. Monthly
// buckets come straight from the collected records; tech stack and
// collaboration make bounded network passes over the newest pulls and
// degrade to absent blocks on failure
func (s *Service) collectAnalytics(ctx context.Context, in domain.RunInput, res *domain.Result) {
	res.Monthly = monthlyTrends(res)

	if len(res.Pulls) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
	defer cancel()

	p := pool.New().WithMaxGoroutines(2).WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		res.TechStack = s.scanTechStack(ctx, in.Repo, res.Pulls)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		res.Collaboration = s.scanCollaboration(ctx, in, res.Pulls)
		return nil
	})
	_ = p.Wait()
}

// monthlyTrends buckets every collected record into calendar months
func monthlyTrends(res *domain.Result) []trends.MonthlyTrend {
	b := trends.Buckets{}
	for i := range res.Commits {
		b.At(ptime.MonthKey(res.Commits[i].Date)).Commits++
	}
	for i := range res.Pulls {
		b.At(ptime.MonthKey(res.Pulls[i].CreatedAt)).PullRequests++
	}
	for i := range res.Reviews {
		b.At(ptime.MonthKey(res.Reviews[i].SubmittedAt)).Reviews++
	}
	for i := range res.Issues {
		b.At(ptime.MonthKey(res.Issues[i].CreatedAt)).Issues++
	}
	return b.Sorted()
}

// scanTechStack counts languages across the changed files of the newest
// pulls. Pulls whose file list cannot be fetched are skipped
func (s *Service) scanTechStack(ctx context.Context, repo string, pulls []domain.PullRequest) *trends.TechStack {
	n := min(len(pulls), s.Cfg.TechStackPulls)
	if n == 0 {
		return nil
	}

	counts := map[string]int{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.Cfg.DetailWorkers).WithContext(ctx)
	for i := range pulls[:n] {
		number := pulls[i].Number
		p.Go(func(ctx context.Context) error {
			files, err := s.API.ListPullFiles(ctx, repo, number)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int("number", number).Msg("tech stack file lookup failed, skipping pull")
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, entry := range files {
				if lang, ok := filter.LanguageForFile(entry.Filename); ok {
					counts[lang]++
				}
			}
			return nil
		})
	}
	_ = p.Wait()

	return trends.BuildTechStack(counts)
}

// scanCollaboration counts reviewers across the newest pulls. Bot reviewers
// are dropped per the filter spec; in author mode the author's own reviews
// do not count as collaboration
func (s *Service) scanCollaboration(ctx context.Context, in domain.RunInput, pulls []domain.PullRequest) *trends.Collaboration {
	n := min(len(pulls), s.Cfg.CollabPulls)
	if n == 0 {
		return nil
	}

	counts := map[string]int{}
	received := 0
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.Cfg.DetailWorkers).WithContext(ctx)
	for i := range pulls[:n] {
		number := pulls[i].Number
		p.Go(func(ctx context.Context) error {
			reviews, err := s.API.ListReviews(ctx, in.Repo, number)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int("number", number).Msg("collaboration review lookup failed, skipping pull")
				return nil
			}

			local := map[string]int{}
			for j := range reviews {
				login, kind := accountParts(reviews[j].User)
				if login == "" {
					continue
				}
				if in.Filters.ExcludesAuthor(login, kind) {
					continue
				}
				if in.Author != "" && login == in.Author {
					continue
				}
				local[login]++
			}

			mu.Lock()
			defer mu.Unlock()
			for login, c := range local {
				counts[login] += c
				received += c
			}
			return nil
		})
	}
	_ = p.Wait()

	return trends.BuildCollaboration(counts, received, len(counts))
}
