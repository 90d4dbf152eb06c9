// Package service implements the collection orchestrator
package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"retroscope/internal/adapters/github"
	perr "retroscope/internal/platform/errors"
	"retroscope/internal/platform/logger"
	ptime "retroscope/internal/platform/time"
	"retroscope/internal/services/collect/domain"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// API is the slice of the GitHub client the collectors consume
type API interface {
	ListCommits(ctx context.Context, repo string, query url.Values, stop func(github.Commit) bool) ([]github.Commit, error)
	GetCommit(ctx context.Context, repo, sha string) (*github.CommitDetail, error)
	ListBranches(ctx context.Context, repo string) ([]github.Branch, error)
	ListPulls(ctx context.Context, repo string, query url.Values, stop func(github.PullRequest) bool) ([]github.PullRequest, error)
	PullDetail(ctx context.Context, repo string, number int) (*github.PullRequest, error)
	ListPullFiles(ctx context.Context, repo string, number int) ([]github.PullRequestFile, error)
	ListReviews(ctx context.Context, repo string, number int) ([]github.Review, error)
	ListIssues(ctx context.Context, repo string, query url.Values, stop func(github.Issue) bool) ([]github.Issue, error)
}

// Config for the collect service
type Config struct {
	Workers        int           // collector fan-out
	DetailWorkers  int           // per-record detail and review pools
	Timeout        time.Duration // budget per collector and per analytics phase
	Limit          int           // per-resource record cap
	Examples       int           // pull request spotlight size
	TechStackPulls int           // newest pulls scanned for languages
	CollabPulls    int           // newest pulls scanned for reviewers
}

var _ domain.CollectorPort = (*Service)(nil)

// Service implements domain.CollectorPort
type Service struct {
	API API
	Cfg Config

	now func() time.Time
}

// New constructs a collect service with config defaults applied
func New(api API, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DetailWorkers <= 0 {
		cfg.DetailWorkers = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Examples <= 0 {
		cfg.Examples = 3
	}
	if cfg.TechStackPulls <= 0 {
		cfg.TechStackPulls = 50
	}
	if cfg.CollabPulls <= 0 {
		cfg.CollabPulls = 100
	}
	return &Service{API: api, Cfg: cfg, now: time.Now}
}

// Run collects the four resources concurrently, each under its own timeout.
// Collector failures become status flags; Run itself only fails on bad input
func (s *Service) Run(ctx context.Context, in domain.RunInput) (*domain.Result, error) {
	if in.Repo == "" {
		return nil, perr.InvalidArgf("repo is required")
	}

	limit := in.Limit
	if limit <= 0 {
		limit = s.Cfg.Limit
	}
	months := max(in.Months, 1)

	now := s.now().UTC()
	since := ptime.WindowSince(now, months)
	runID := uuid.NewString()

	ctx = logger.WithRun(ctx, runID, in.Repo)
	log := logger.C(ctx)
	log.Info().
		Int("months", months).
		Str("author", in.Author).
		Time("since", since).
		Msg("collection started")

	res := domain.NewResult(runID, in.Repo, months, since, now, in.Filters)

	var (
		commits  []domain.Commit
		pulls    []domain.PullRequest
		examples []domain.PullRequestSummary
		reviews  []domain.Review
		issues   []domain.Issue

		errCommits, errPulls, errReviews, errIssues error
	)

	p := pool.New().WithMaxGoroutines(s.Cfg.Workers).WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
		defer cancel()
		commits, errCommits = s.collectCommits(ctx, in, since, limit)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
		defer cancel()
		pulls, examples, errPulls = s.collectPulls(ctx, in, since, limit)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
		defer cancel()
		reviews, errReviews = s.collectReviews(ctx, in, since, limit)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
		defer cancel()
		issues, errIssues = s.collectIssues(ctx, in, since, limit)
		return nil
	})
	// tasks report through their own error slots
	_ = p.Wait()

	s.settle(ctx, res, domain.ResourceCommits, errCommits, func() { res.Commits = commits })
	s.settle(ctx, res, domain.ResourcePulls, errPulls, func() {
		res.Pulls = pulls
		res.Examples = examples
	})
	s.settle(ctx, res, domain.ResourceReviews, errReviews, func() { res.Reviews = reviews })
	s.settle(ctx, res, domain.ResourceIssues, errIssues, func() { res.Issues = issues })

	s.collectAnalytics(ctx, in, res)

	log.Info().
		Int("commits", len(res.Commits)).
		Int("pull_requests", len(res.Pulls)).
		Int("reviews", len(res.Reviews)).
		Int("issues", len(res.Issues)).
		Bool("partial", res.Partial()).
		Msg("collection complete")
	return res, nil
}

// settle records one collector outcome: apply the records on success, flag
// the resource on failure
func (s *Service) settle(ctx context.Context, res *domain.Result, r domain.Resource, err error, apply func()) {
	if err == nil {
		apply()
		return
	}
	class := errClass(err)
	res.Flag(r, class, err.Error())
	logger.C(ctx).Warn().
		Err(err).
		Str("resource", string(r)).
		Str("class", class).
		Msg("resource collection failed")
}

// errClass labels an error for status flags. Deadline errors that escaped
// classification count as timeouts
func errClass(err error) string {
	if code := perr.CodeOf(err); code != perr.ErrorCodeUnknown {
		return code.String()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.ErrorCodeTimeout.String()
	}
	return perr.ErrorCodeUnknown.String()
}

// accountParts splits an optional account into filter arguments
func accountParts(a *github.Account) (login, kind string) {
	if a == nil {
		return "", ""
	}
	return a.Login, a.Type
}

// listQuery is the shared ordering for pull and issue listings
func listQuery() url.Values {
	q := url.Values{}
	q.Set("state", "all")
	q.Set("sort", "created")
	q.Set("direction", "desc")
	return q
}
