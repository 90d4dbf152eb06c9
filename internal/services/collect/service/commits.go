package service

import (
	"context"
	"net/url"
	"time"

	"retroscope/internal/adapters/github"
	"retroscope/internal/core/filter"
	"retroscope/internal/platform/logger"
	"retroscope/internal/services/collect/domain"
)

// collectCommits lists commits per branch inside the window, deduplicates by
// SHA across branches, and applies author and file filters. Path includes
// narrow the listing itself via the commits API path parameter
func (s *Service) collectCommits(ctx context.Context, in domain.RunInput, since time.Time, limit int) ([]domain.Commit, error) {
	branches, err := s.branchesToScan(ctx, in.Repo, in.Filters)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Commit, 0, limit)
	if len(branches) == 0 {
		return out, nil
	}

	paths := in.Filters.IncludePaths
	if len(paths) == 0 {
		paths = []string{""}
	}

	seen := make(map[string]struct{}, limit)
	fileCache := map[string][]string{}

	for _, branch := range branches {
		if len(out) >= limit {
			break
		}
		for _, path := range paths {
			if len(out) >= limit {
				break
			}

			query := url.Values{}
			query.Set("since", since.Format(time.RFC3339))
			if branch != "" {
				query.Set("sha", branch)
			}
			if path != "" {
				query.Set("path", path)
			}
			if in.Author != "" {
				query.Set("author", in.Author)
			}

			items, err := s.API.ListCommits(ctx, in.Repo, query, func(c github.Commit) bool {
				return c.Commit.Author.Date.Before(since)
			})
			if err != nil {
				return nil, err
			}

			for _, item := range items {
				if len(out) >= limit {
					break
				}
				if _, dup := seen[item.SHA]; dup {
					continue
				}
				seen[item.SHA] = struct{}{}

				if in.Filters.ExcludesAuthor(accountParts(item.Author)) {
					continue
				}
				if in.Filters.HasFileFilters() {
					ok, err := s.commitMatchesFiles(ctx, in.Repo, item.SHA, in.Filters, fileCache)
					if err != nil {
						logger.C(ctx).Warn().Err(err).Str("sha", item.SHA).Msg("commit file lookup failed, skipping")
						continue
					}
					if !ok {
						continue
					}
				}

				out = append(out, domain.Commit{
					SHA:     item.SHA,
					Message: item.Commit.Message,
					Author:  item.Commit.Author.Name,
					Date:    item.Commit.Author.Date,
					URL:     item.HTMLURL,
				})
			}
		}
	}
	return out, nil
}

// branchesToScan resolves the branch filter to concrete listing targets.
// No branch filters means the default branch, listed with an empty name.
// Exclude-only filters need the full branch list to subtract from
func (s *Service) branchesToScan(ctx context.Context, repo string, f filter.Spec) ([]string, error) {
	if len(f.IncludeBranches) > 0 {
		out := make([]string, 0, len(f.IncludeBranches))
		for _, b := range f.IncludeBranches {
			if f.MatchesBranch(b) {
				out = append(out, b)
			}
		}
		return out, nil
	}
	if len(f.ExcludeBranches) > 0 {
		branches, err := s.API.ListBranches(ctx, repo)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(branches))
		for _, b := range branches {
			if f.MatchesBranch(b.Name) {
				out = append(out, b.Name)
			}
		}
		return out, nil
	}
	return []string{""}, nil
}

// commitMatchesFiles fetches the changed file list for a commit, memoized per
// run, and applies the file filters
func (s *Service) commitMatchesFiles(ctx context.Context, repo, sha string, f filter.Spec, cache map[string][]string) (bool, error) {
	files, ok := cache[sha]
	if !ok {
		detail, err := s.API.GetCommit(ctx, repo, sha)
		if err != nil {
			return false, err
		}
		files = make([]string, 0, len(detail.Files))
		for _, entry := range detail.Files {
			files = append(files, entry.Filename)
		}
		cache[sha] = files
	}
	return f.MatchesFiles(files), nil
}
