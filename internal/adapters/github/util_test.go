package github

import (
	"net/http"
	"testing"
	"time"
)

func TestComputeWait(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	cases := []struct {
		name       string
		remaining  int
		reset      time.Time
		retryAfter int
		want       time.Duration
	}{
		{"retry after wins", 0, now.Add(time.Minute), 7, 7 * time.Second},
		{"retry after capped", 0, time.Time{}, 3600, maxRateWait},
		{"reset when exhausted", 0, now.Add(30 * time.Second), 0, 30 * time.Second},
		{"distant reset capped", 0, now.Add(time.Hour), 0, maxRateWait},
		{"reset in past", 0, now.Add(-time.Second), 0, 0},
		{"quota left", 12, now.Add(30 * time.Second), 0, 0},
		{"no headers", 0, time.Time{}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := computeWait(tc.remaining, tc.reset, tc.retryAfter, now); got != tc.want {
				t.Fatalf("computeWait = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	h := func(k, v string) http.Header {
		hh := http.Header{}
		if k != "" {
			hh.Set(k, v)
		}
		return hh
	}
	cases := []struct {
		name   string
		status int
		header http.Header
		want   bool
	}{
		{"429 always", http.StatusTooManyRequests, h("", ""), true},
		{"403 with retry after", http.StatusForbidden, h("Retry-After", "10"), true},
		{"403 exhausted quota", http.StatusForbidden, h("X-RateLimit-Remaining", "0"), true},
		{"403 bare", http.StatusForbidden, h("", ""), false},
		{"403 quota left", http.StatusForbidden, h("X-RateLimit-Remaining", "41"), false},
		{"plain 200", http.StatusOK, h("", ""), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRateLimited(tc.status, tc.header); got != tc.want {
				t.Fatalf("isRateLimited(%d) = %v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestParseRateHeaders(t *testing.T) {
	hh := http.Header{}
	hh.Set("X-RateLimit-Remaining", "3")
	hh.Set("X-RateLimit-Reset", "1700000060")
	hh.Set("Retry-After", "9")

	rem, reset, retryAfter := parseRateHeaders(hh)
	if rem != 3 {
		t.Fatalf("remaining = %d, want 3", rem)
	}
	if !reset.Equal(time.Unix(1_700_000_060, 0).UTC()) {
		t.Fatalf("reset = %v, want 1700000060", reset)
	}
	if retryAfter != 9 {
		t.Fatalf("retryAfter = %d, want 9", retryAfter)
	}

	rem, reset, retryAfter = parseRateHeaders(http.Header{})
	if rem != 0 || !reset.IsZero() || retryAfter != 0 {
		t.Fatalf("empty headers = (%d, %v, %d), want zeros", rem, reset, retryAfter)
	}
}
