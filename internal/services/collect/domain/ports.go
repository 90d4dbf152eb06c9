package domain

import (
	"context"

	"retroscope/internal/core/filter"
)

// RunInput scopes one collection run
type RunInput struct {
	Repo    string // owner/name
	Months  int    // lookback window, minimum one
	Author  string // optional login to scope activity to
	Limit   int    // per-resource record cap, 0 = service default
	Filters filter.Spec
}

// CollectorPort runs a collection and always returns a structurally valid
// Result; resource-level failures surface as status flags, not errors
type CollectorPort interface {
	Run(ctx context.Context, in RunInput) (*Result, error)
}
