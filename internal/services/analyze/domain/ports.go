package domain

import "context"

// AnalyzerPort produces feedback for collected activity. Analysis-service
// outages never surface as errors; affected blocks arrive tagged heuristic.
// Credential and other configuration problems do surface, since neither
// retrying nor falling back can fix them
type AnalyzerPort interface {
	// Analyze runs one category and returns a report with only that block set
	Analyze(ctx context.Context, category Category, in Input) (*Report, error)

	// AnalyzeAll runs every category concurrently
	AnalyzeAll(ctx context.Context, in Input) (*Report, error)
}
