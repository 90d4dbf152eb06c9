package trends

// Collaboration is the reviewer network around the analyzed activity
type Collaboration struct {
	Reviewers           map[string]int `json:"pr_reviewers"`
	TopReviewers        []string       `json:"top_reviewers"`
	ReviewsReceived     int            `json:"review_received_count"`
	UniqueCollaborators int            `json:"unique_collaborators"`
}

// BuildCollaboration ranks reviewers by review count
func BuildCollaboration(reviewers map[string]int, received, collaborators int) *Collaboration {
	if reviewers == nil {
		reviewers = map[string]int{}
	}
	return &Collaboration{
		Reviewers:           reviewers,
		TopReviewers:        topNames(reviewers, topReviewers),
		ReviewsReceived:     received,
		UniqueCollaborators: collaborators,
	}
}
