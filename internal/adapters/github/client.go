// Package github provides a resilient GitHub REST v3 client for retroscope
// collectors: retries with backoff for transient failures, rate limit
// handling, response caching, and request deduplication
package github

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retroscope/internal/platform/cache"
	perr "retroscope/internal/platform/errors"
	"retroscope/internal/platform/logger"
	ptime "retroscope/internal/platform/time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	baseURLDefault   = "https://api.github.com"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "retroscope"
	defaultMaxRetry  = 3
	defaultRetryBase = 1 * time.Second

	// maxBodyBytes caps how much of any response body we will read
	maxBodyBytes = 1 << 20

	// diagTailBytes caps the body tail kept for error diagnostics
	diagTailBytes = 2048
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Personal access token
	// Empty means tokenless which is very low quota so not recommended
	Token string

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a GitHub REST client with retries, rate limit handling, a disk
// cache for successful GET bodies, and in-flight request deduplication
type Client struct {
	http  *http.Client
	opts  Options
	cache *cache.Cache
	group singleflight.Group
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a Client with sane defaults
// cc may be nil to run without a response cache
func NewClient(o Options, cc *cache.Cache) (*Client, error) {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	rt, err := transport(o.Token)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:  &http.Client{Transport: rt, Timeout: o.Timeout},
		opts:  o,
		cache: cc,
		log:   *logger.Named("github"),
		now:   time.Now,
		sleep: ptime.Sleep,
	}, nil
}

// transport stacks the secondary rate limit waiter under an oauth2 bearer
// source. The waiter only sleeps through secondary limits shorter than the
// rate-wait ceiling; anything longer falls through to the retry loop, whose
// waits are capped and cancelable
func transport(token string) (http.RoundTripper, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(maxRateWait, nil))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github rate limit waiter failed")
	}
	if token == "" {
		return waiter, nil
	}
	return &oauth2.Transport{
		Base:   waiter,
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
	}, nil
}

// Get fetches one resource, serving from the response cache when possible.
// Concurrent identical requests share a single upstream fetch
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := requestKey(path, query)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			return data, nil
		}
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// a queued duplicate may find the body the leader just wrote
		if c.cache != nil {
			if data, ok := c.cache.Get(key); ok {
				return data, nil
			}
		}
		body, err := c.do(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.Set(key, body); err != nil {
				c.log.Debug().Err(err).Str("path", path).Msg("github cache write failed")
			}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// requestKey builds the cache and flight key for a request
// url.Values.Encode sorts keys so equivalent queries map to the same entry
func requestKey(path string, query url.Values) string {
	return "GET " + path + "?" + query.Encode()
}

// do issues one GET with retries for transient and rate limited responses.
// 2xx bodies are read in full and returned; 401 and other permanent statuses
// fail on the first response
func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.opts.BaseURL + path
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/vnd.github+json")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeTransientUpstream, "github request failed after %d attempts", attempts+1)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("github transport error retrying")
			if serr := c.sleep(ctx, back); serr != nil {
				return nil, serr
			}
			attempts++
			continue
		}

		rem, reset, retryAfter := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Int("retry_after_s", retryAfter).
			Msg("github http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if cerr := resp.Body.Close(); cerr != nil {
				c.log.Debug().Err(cerr).Msg("github body close failed")
			}
			if rerr != nil {
				if !c.shouldRetry(attempts) {
					return nil, perr.Wrapf(rerr, perr.ErrorCodeTransientUpstream, "github body read failed")
				}
				back := c.backoff(attempts)
				c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("github body read failed retrying")
				if serr := c.sleep(ctx, back); serr != nil {
					return nil, serr
				}
				attempts++
				continue
			}
			return body, nil

		case resp.StatusCode == http.StatusUnauthorized:
			_ = drainAndClose(resp.Body)
			return nil, perr.Unauthorizedf("github rejected credentials (status 401)")

		case isRateLimited(resp.StatusCode, resp.Header):
			wait := computeWait(rem, reset, retryAfter, c.now())
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.TransientUpstreamf("github rate limited (status %d)", resp.StatusCode)
			}
			c.log.Warn().Dur("sleep", wait).Int("status", resp.StatusCode).Msg("github rate limited backing off")
			_ = drainAndClose(resp.Body)
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			attempts++
			continue

		case perr.TransientStatus(resp.StatusCode):
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.FromStatusf(resp.StatusCode, "github transient status %d after %d attempts", resp.StatusCode, attempts+1)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("status", resp.StatusCode).Int("attempt", attempts).Msg("github transient error retrying")
			_ = drainAndClose(resp.Body)
			if serr := c.sleep(ctx, back); serr != nil {
				return nil, serr
			}
			attempts++
			continue

		default:
			// keep a small body tail for diagnostics then classify
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, diagTailBytes))
			_ = resp.Body.Close()
			return nil, perr.FromStatusf(resp.StatusCode, "github status %d on %s: %s", resp.StatusCode, path, strings.TrimSpace(string(tail)))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
