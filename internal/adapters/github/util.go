package github

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

func parseRateHeaders(h http.Header) (remaining int, reset time.Time, retryAfter int) {
	remaining = atoi(h.Get("X-RateLimit-Remaining"))
	if rs := h.Get("X-RateLimit-Reset"); rs != "" {
		if sec := atoi(rs); sec > 0 {
			reset = time.Unix(int64(sec), 0).UTC()
		}
	}
	retryAfter = atoi(h.Get("Retry-After"))
	return
}

// maxRateWait caps a rate-limit wait at the same ceiling as backoff; a
// reset an hour out must not hold a collector past its timeout budget
const maxRateWait = 30 * time.Second

// computeWait decides how long to wait based on rate headers
func computeWait(remaining int, reset time.Time, retryAfter int, now time.Time) time.Duration {
	if retryAfter > 0 {
		return min(time.Duration(retryAfter)*time.Second, maxRateWait)
	}
	if remaining <= 0 && !reset.IsZero() {
		if reset.After(now) {
			return min(reset.Sub(now), maxRateWait)
		}
		return 0
	}
	return 0
}

// isRateLimited reports whether a response is a primary or secondary rate
// limit. GitHub answers 429 outright but secondary limits arrive as 403
// with Retry-After or an exhausted X-RateLimit-Remaining; a bare 403 is a
// permission problem and must not be retried
func isRateLimited(status int, h http.Header) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status == http.StatusForbidden &&
		(h.Get("Retry-After") != "" || h.Get("X-RateLimit-Remaining") == "0")
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
