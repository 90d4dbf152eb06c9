// Package time contains time related helpers
package time

import (
	"context"
	"time"
)

// DaysPerMonth approximates a month when deriving collection windows
const DaysPerMonth = 30

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// WindowSince returns the UTC start of a lookback window of months (30-day
// months, minimum one)
func WindowSince(now time.Time, months int) time.Time {
	return now.UTC().AddDate(0, 0, -DaysPerMonth*max(months, 1))
}

// MonthKey buckets t into a calendar month label like "2025-07"
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// Sleep waits for d or until ctx is done, whichever comes first.
// Returns ctx.Err() when interrupted so retry loops can bail out
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
