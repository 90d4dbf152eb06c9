package service

import (
	"context"
	"strings"
	"time"

	"retroscope/internal/adapters/github"
	"retroscope/internal/core/filter"
	"retroscope/internal/platform/logger"
	"retroscope/internal/services/collect/domain"

	"github.com/sourcegraph/conc/pool"
)

// collectPulls runs the two-phase pull collection: a cheap listing pass with
// author and branch filters, then bounded per-pull fetches for file filters
// and detail fields. The author path lists through the issues API, which is
// the only listing the creator parameter works on
func (s *Service) collectPulls(ctx context.Context, in domain.RunInput, since time.Time, limit int) ([]domain.PullRequest, []domain.PullRequestSummary, error) {
	var (
		candidates []github.PullRequest
		detailed   bool
		err        error
	)
	if in.Author != "" {
		candidates, err = s.pullsByAuthor(ctx, in, since)
		detailed = true
	} else {
		candidates, err = s.API.ListPulls(ctx, in.Repo, listQuery(), func(pr github.PullRequest) bool {
			return pr.CreatedAt.Before(since)
		})
	}
	if err != nil {
		return nil, nil, err
	}

	kept := make([]github.PullRequest, 0, len(candidates))
	for i := range candidates {
		pr := &candidates[i]
		if in.Filters.ExcludesAuthor(accountParts(pr.User)) {
			continue
		}
		if !in.Filters.MatchesPullBranches(pr.BaseRef(), pr.HeadRef()) {
			continue
		}
		kept = append(kept, *pr)
	}

	if in.Filters.HasFileFilters() {
		kept = s.filterPullsByFiles(ctx, in.Repo, kept, in.Filters)
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	if !detailed {
		s.detailPulls(ctx, in.Repo, kept)
	}

	pulls := make([]domain.PullRequest, 0, len(kept))
	for i := range kept {
		pulls = append(pulls, toPullRecord(&kept[i]))
	}
	return pulls, s.buildExamples(kept), nil
}

// pullsByAuthor lists the author's pull requests via the issues API and
// resolves each surviving number to a full pull document. Numbers that fail
// to resolve are dropped
func (s *Service) pullsByAuthor(ctx context.Context, in domain.RunInput, since time.Time) ([]github.PullRequest, error) {
	query := listQuery()
	query.Set("creator", in.Author)
	issues, err := s.API.ListIssues(ctx, in.Repo, query, func(i github.Issue) bool {
		return i.CreatedAt.Before(since)
	})
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(issues))
	for i := range issues {
		if !issues[i].IsPullRequest() {
			continue
		}
		numbers = append(numbers, issues[i].Number)
	}

	slots := make([]*github.PullRequest, len(numbers))
	p := pool.New().WithMaxGoroutines(s.Cfg.DetailWorkers).WithContext(ctx)
	for i, number := range numbers {
		p.Go(func(ctx context.Context) error {
			detail, err := s.API.PullDetail(ctx, in.Repo, number)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int("number", number).Msg("pull detail fetch failed, skipping")
				return nil
			}
			slots[i] = detail
			return nil
		})
	}
	_ = p.Wait()

	out := make([]github.PullRequest, 0, len(slots))
	for _, pr := range slots {
		if pr != nil {
			out = append(out, *pr)
		}
	}
	return out, nil
}

// filterPullsByFiles applies file filters that need the changed file list,
// fetching per pull on a bounded pool. Pulls whose file list cannot be
// fetched are dropped; order is preserved
func (s *Service) filterPullsByFiles(ctx context.Context, repo string, prs []github.PullRequest, f filter.Spec) []github.PullRequest {
	if len(prs) == 0 {
		return prs
	}

	keep := make([]bool, len(prs))
	p := pool.New().WithMaxGoroutines(s.Cfg.DetailWorkers).WithContext(ctx)
	for i := range prs {
		p.Go(func(ctx context.Context) error {
			files, err := s.API.ListPullFiles(ctx, repo, prs[i].Number)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int("number", prs[i].Number).Msg("pull file lookup failed, skipping")
				return nil
			}
			names := make([]string, 0, len(files))
			for _, entry := range files {
				names = append(names, entry.Filename)
			}
			keep[i] = f.MatchesFiles(names)
			return nil
		})
	}
	_ = p.Wait()

	out := make([]github.PullRequest, 0, len(prs))
	for i := range prs {
		if keep[i] {
			out = append(out, prs[i])
		}
	}
	return out
}

// detailPulls swaps listing entries for their detail documents in place.
// The listing payload lacks additions and deletions; a failed detail fetch
// keeps the listing entry
func (s *Service) detailPulls(ctx context.Context, repo string, prs []github.PullRequest) {
	if len(prs) == 0 {
		return
	}
	p := pool.New().WithMaxGoroutines(s.Cfg.DetailWorkers).WithContext(ctx)
	for i := range prs {
		p.Go(func(ctx context.Context) error {
			detail, err := s.API.PullDetail(ctx, repo, prs[i].Number)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int("number", prs[i].Number).Msg("pull detail fetch failed, keeping listing data")
				return nil
			}
			prs[i] = *detail
			return nil
		})
	}
	_ = p.Wait()
}

func toPullRecord(pr *github.PullRequest) domain.PullRequest {
	login, _ := accountParts(pr.User)
	return domain.PullRequest{
		Number:    pr.Number,
		Title:     pr.Title,
		Author:    login,
		State:     pr.State,
		CreatedAt: pr.CreatedAt,
		MergedAt:  pr.MergedAt,
		Additions: pr.Additions,
		Deletions: pr.Deletions,
		URL:       pr.HTMLURL,
	}
}

// buildExamples turns the newest kept pulls into spotlight entries
func (s *Service) buildExamples(prs []github.PullRequest) []domain.PullRequestSummary {
	n := min(len(prs), s.Cfg.Examples)
	out := make([]domain.PullRequestSummary, 0, n)
	for i := range prs[:n] {
		pr := &prs[i]
		login, _ := accountParts(pr.User)
		if login == "" {
			login = "unknown"
		}
		title := strings.TrimSpace(pr.Title)
		if title == "" {
			title = "(no title)"
		}
		out = append(out, domain.PullRequestSummary{
			Number:    pr.Number,
			Title:     title,
			Author:    login,
			URL:       pr.HTMLURL,
			CreatedAt: pr.CreatedAt,
			MergedAt:  pr.MergedAt,
			Additions: pr.Additions,
			Deletions: pr.Deletions,
		})
	}
	return out
}
