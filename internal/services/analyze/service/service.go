// Package service implements the analysis client: capped prompt samples, a
// validated completions call per category, and the heuristic fallback that
// keeps a run producing feedback when the completions endpoint cannot
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"retroscope/internal/adapters/llm"
	"retroscope/internal/core/heuristic"
	"retroscope/internal/platform/bind"
	perr "retroscope/internal/platform/errors"
	"retroscope/internal/platform/logger"
	"retroscope/internal/services/analyze/domain"

	"github.com/sourcegraph/conc/pool"
)

// Completer is the slice of the llm client the service consumes
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

// Config for the analyze service
type Config struct {
	Workers     int           // category fan-out
	Timeout     time.Duration // budget per category call
	Temperature float64

	// Sample caps per category
	SampleCommits int
	SampleTitles  int
	SampleReviews int
	SampleIssues  int
}

var _ domain.AnalyzerPort = (*Service)(nil)

// Service implements domain.AnalyzerPort
type Service struct {
	LLM  Completer
	Cfg  Config
	heur *heuristic.Scorer
}

// New constructs an analyze service with config defaults applied
func New(completer Completer, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = llm.DefaultTemperature
	}
	if cfg.SampleCommits <= 0 {
		cfg.SampleCommits = 20
	}
	if cfg.SampleTitles <= 0 {
		cfg.SampleTitles = 20
	}
	if cfg.SampleReviews <= 0 {
		cfg.SampleReviews = 15
	}
	if cfg.SampleIssues <= 0 {
		cfg.SampleIssues = 15
	}
	return &Service{LLM: completer, Cfg: cfg, heur: heuristic.New()}
}

// Analyze runs one category and returns a report with only that block set
func (s *Service) Analyze(ctx context.Context, category domain.Category, in domain.Input) (*domain.Report, error) {
	apply, err := s.analyzeCategory(ctx, category, in)
	if err != nil {
		return nil, err
	}
	rep := domain.NewReport()
	apply(rep)
	return rep, nil
}

// AnalyzeAll runs every category on a bounded pool. Category calls are
// independent; the first configuration-class failure wins and cancels the rest
func (s *Service) AnalyzeAll(ctx context.Context, in domain.Input) (*domain.Report, error) {
	rep := domain.NewReport()
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.Cfg.Workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, category := range domain.Categories() {
		p.Go(func(ctx context.Context) error {
			apply, err := s.analyzeCategory(ctx, category, in)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			apply(rep)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return rep, nil
}

// analyzeCategory runs one category under its own timeout and returns the
// mutation that installs its block on a report
func (s *Service) analyzeCategory(ctx context.Context, category domain.Category, in domain.Input) (func(*domain.Report), error) {
	ctx, cancel := context.WithTimeout(ctx, s.Cfg.Timeout)
	defer cancel()

	switch category {
	case domain.CategoryCommitMessages:
		return s.analyzeCommits(ctx, in)
	case domain.CategoryPullTitles:
		return s.analyzeTitles(ctx, in)
	case domain.CategoryReviewTone:
		return s.analyzeReviews(ctx, in)
	case domain.CategoryIssueQuality:
		return s.analyzeIssues(ctx, in)
	}
	return nil, perr.InvalidArgf("unknown analysis category %q", category)
}

// completePayload runs the completions call for one category and decodes the
// validated payload. Parse and shape failures come back ResponseValidation
// coded so the caller falls back without another network attempt
func completePayload[T any](ctx context.Context, s *Service, category domain.Category, messages []llm.Message) (T, error) {
	var zero T

	content, err := s.LLM.Complete(ctx, messages, s.Cfg.Temperature)
	if err != nil {
		return zero, err
	}

	payload, err := bind.ParseJSON[T]([]byte(stripFences(content)))
	if err != nil {
		return zero, perr.Wrapf(err, perr.ErrorCodeResponseValidation, "%s payload rejected", category)
	}
	return payload, nil
}

// fallback decides what to do with a failed category call: configuration
// problems and caller cancellation propagate, everything else degrades to
// the heuristic scorer
func (s *Service) fallback(ctx context.Context, category domain.Category, err error) (bool, error) {
	if errors.Is(err, context.Canceled) {
		return false, err
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeUnauthorized, perr.ErrorCodePermanentUpstream:
		return false, err
	}
	logger.C(ctx).Warn().
		Err(err).
		Str("category", string(category)).
		Msg("llm analysis unavailable, using heuristic scoring")
	return true, nil
}

// stripFences unwraps a markdown code fence around a JSON payload. Models
// add them despite instructions; the content inside is what matters
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	if i := strings.LastIndex(trimmed, "```"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimSpace(trimmed)
}

// shortSHA trims a commit hash for prompt display
func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
