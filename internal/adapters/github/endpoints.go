package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"retroscope/internal/platform/bind"
	perr "retroscope/internal/platform/errors"
)

const (
	// perPageDefault is the page size requested from listing endpoints
	perPageDefault = 100

	// maxPages bounds any pagination walk
	maxPages = 100
)

// FetchAll walks the paginated listing at path, decoding each page into T.
// stop, when non-nil, is consulted per item; the item that trips it is
// dropped and the walk ends. A short or empty page ends the walk too, and
// no walk runs past maxPages. query may carry a per_page override up to
// perPageDefault; page is managed here
func FetchAll[T any](ctx context.Context, c *Client, path string, query url.Values, stop func(T) bool) ([]T, error) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	perPage := perPageDefault
	if v := atoi(q.Get("per_page")); v > 0 && v <= perPageDefault {
		perPage = v
	}
	q.Set("per_page", strconv.Itoa(perPage))

	var out []T
	for page := 1; page <= maxPages; page++ {
		q.Set("page", strconv.Itoa(page))
		body, err := c.Get(ctx, path, q)
		if err != nil {
			return nil, err
		}
		items, err := bind.ParseJSON[[]T](body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "github decode %s page %d failed", path, page)
		}
		for _, it := range items {
			if stop != nil && stop(it) {
				return out, nil
			}
			out = append(out, it)
		}
		if len(items) < perPage {
			break
		}
	}
	return out, nil
}

// fetchOne fetches a single resource at path and decodes it into T
func fetchOne[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	v, err := bind.ParseJSON[T](body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "github decode %s failed", path)
	}
	return &v, nil
}

// ListCommits pages through commits for repo, newest first.
// query carries listing filters (since, until, sha, path, author)
func (c *Client) ListCommits(ctx context.Context, repo string, query url.Values, stop func(Commit) bool) ([]Commit, error) {
	return FetchAll[Commit](ctx, c, "/repos/"+repo+"/commits", query, stop)
}

// GetCommit fetches one commit with its changed file list
func (c *Client) GetCommit(ctx context.Context, repo, sha string) (*CommitDetail, error) {
	return fetchOne[CommitDetail](ctx, c, fmt.Sprintf("/repos/%s/commits/%s", repo, sha), nil)
}

// ListBranches pages through the branches of repo
func (c *Client) ListBranches(ctx context.Context, repo string) ([]Branch, error) {
	return FetchAll[Branch](ctx, c, fmt.Sprintf("/repos/%s/branches", repo), nil, nil)
}

// ListPulls pages through pull requests for repo.
// query carries listing filters (state, sort, direction)
func (c *Client) ListPulls(ctx context.Context, repo string, query url.Values, stop func(PullRequest) bool) ([]PullRequest, error) {
	return FetchAll[PullRequest](ctx, c, "/repos/"+repo+"/pulls", query, stop)
}

// PullDetail fetches one pull request with its change counters
func (c *Client) PullDetail(ctx context.Context, repo string, number int) (*PullRequest, error) {
	return fetchOne[PullRequest](ctx, c, fmt.Sprintf("/repos/%s/pulls/%d", repo, number), nil)
}

// ListPullFiles pages through the changed files of one pull request
func (c *Client) ListPullFiles(ctx context.Context, repo string, number int) ([]PullRequestFile, error) {
	return FetchAll[PullRequestFile](ctx, c, fmt.Sprintf("/repos/%s/pulls/%d/files", repo, number), nil, nil)
}

// ListReviews pages through the submitted reviews of one pull request
func (c *Client) ListReviews(ctx context.Context, repo string, number int) ([]Review, error) {
	return FetchAll[Review](ctx, c, fmt.Sprintf("/repos/%s/pulls/%d/reviews", repo, number), nil, nil)
}

// ListIssues pages through the issues listing for repo. The listing mixes in
// pull requests; callers filter with Issue.IsPullRequest.
// query carries listing filters (state, creator, sort, direction, since)
func (c *Client) ListIssues(ctx context.Context, repo string, query url.Values, stop func(Issue) bool) ([]Issue, error) {
	return FetchAll[Issue](ctx, c, "/repos/"+repo+"/issues", query, stop)
}

// AuthenticatedUser fetches the user that owns the configured token
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	return fetchOne[User](ctx, c, "/user", nil)
}

// ListViewerRepos pages through repositories accessible to the
// authenticated user.
// query carries listing filters (sort, affiliation)
func (c *Client) ListViewerRepos(ctx context.Context, query url.Values) ([]Repo, error) {
	return FetchAll[Repo](ctx, c, "/user/repos", query, nil)
}
