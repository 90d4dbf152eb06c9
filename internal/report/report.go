// Package report renders a collection run and its analysis for people:
// a colored console view and a markdown document. Partial-failure flags
// and provenance tags always surface so degraded data reads as degraded
package report

import (
	"fmt"

	"retroscope/internal/core/feedback"
	adomain "retroscope/internal/services/analyze/domain"
	cdomain "retroscope/internal/services/collect/domain"
)

// resourceLabel maps resource keys to display names
func resourceLabel(r cdomain.Resource) string {
	switch r {
	case cdomain.ResourceCommits:
		return "Commits"
	case cdomain.ResourcePulls:
		return "Pull requests"
	case cdomain.ResourceReviews:
		return "Reviews"
	case cdomain.ResourceIssues:
		return "Issues"
	}
	return string(r)
}

// sourceLabel phrases a provenance tag for display
func sourceLabel(s feedback.Source) string {
	if s == feedback.SourceHeuristic {
		return "heuristic (analysis service unavailable, reduced confidence)"
	}
	return "model-assisted"
}

// samplingNote phrases the sampling provenance for one category, or returns
// an empty string when everything was analyzed untouched
func samplingNote(sm adomain.Sampling) string {
	if sm.TotalItems == 0 {
		return ""
	}
	if sm.SampledItems == sm.TotalItems && sm.TruncatedItems == 0 {
		return ""
	}
	note := fmt.Sprintf("analyzed %d of %d", sm.SampledItems, sm.TotalItems)
	if sm.TruncatedItems > 0 {
		note += fmt.Sprintf(", %d truncated for the prompt", sm.TruncatedItems)
	}
	return note
}

// ratio renders "good/total" safely
func ratio(part, total int) string {
	return fmt.Sprintf("%d/%d", part, total)
}
