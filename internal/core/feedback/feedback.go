// Package feedback defines the analysis result shapes shared by the LLM
// client and the heuristic scorers. Both producers emit the same types;
// Source records which one a result came from
package feedback

// Source indicates how a feedback block was produced
type Source string

const (
	// SourceLLM marks results parsed from a completions response
	SourceLLM Source = "llm"
	// SourceHeuristic marks results computed by the deterministic scorers
	SourceHeuristic Source = "heuristic"
)

// CommitSample is one commit message offered for analysis
type CommitSample struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// TitleSample is one pull request title offered for analysis
type TitleSample struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// ReviewSample is one review comment offered for analysis
type ReviewSample struct {
	PullNumber int    `json:"pr_number"`
	Author     string `json:"author"`
	Body       string `json:"body"`
	URL        string `json:"url"`
}

// IssueSample is one issue offered for analysis
type IssueSample struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// CommitExample is a quoted commit with the reason it was classified
type CommitExample struct {
	SHA        string `json:"sha"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"` // poor examples only
}

// CommitFeedback reports commit message quality
type CommitFeedback struct {
	Source       Source          `json:"source"`
	TotalCommits int             `json:"total_commits"`
	GoodMessages int             `json:"good_messages"`
	PoorMessages int             `json:"poor_messages"`
	Suggestions  []string        `json:"suggestions"`
	ExamplesGood []CommitExample `json:"examples_good"`
	ExamplesPoor []CommitExample `json:"examples_poor"`
}

// TitleExample is a quoted pull request title with its classification
type TitleExample struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Reason     string `json:"reason"`
	Score      int    `json:"score,omitempty"`      // good examples, 0-10
	Suggestion string `json:"suggestion,omitempty"` // poor examples only
}

// TitleFeedback reports pull request title clarity
type TitleFeedback struct {
	Source       Source         `json:"source"`
	TotalPulls   int            `json:"total_prs"`
	ClearTitles  int            `json:"clear_titles"`
	VagueTitles  int            `json:"vague_titles"`
	Suggestions  []string       `json:"suggestions"`
	ExamplesGood []TitleExample `json:"examples_good"`
	ExamplesPoor []TitleExample `json:"examples_poor"`
}

// ReviewExample is a quoted review comment with tone notes
type ReviewExample struct {
	PullNumber int      `json:"pr_number"`
	Author     string   `json:"author"`
	Comment    string   `json:"comment"`
	URL        string   `json:"url,omitempty"`
	Strengths  []string `json:"strengths,omitempty"` // good examples
	Issues     []string `json:"issues,omitempty"`    // examples to improve
	Improved   string   `json:"improved_version,omitempty"`
}

// ReviewFeedback reports review tone distribution
type ReviewFeedback struct {
	Source          Source          `json:"source"`
	TotalReviews    int             `json:"total_reviews"`
	Constructive    int             `json:"constructive_reviews"`
	Harsh           int             `json:"harsh_reviews"`
	Neutral         int             `json:"neutral_reviews"`
	Suggestions     []string        `json:"suggestions"`
	ExamplesGood    []ReviewExample `json:"examples_good"`
	ExamplesImprove []ReviewExample `json:"examples_improve"`
}

// IssueExample is a quoted issue with completeness notes
type IssueExample struct {
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	Type         string   `json:"type,omitempty"` // bug | feature | question | other
	Strengths    []string `json:"strengths,omitempty"`
	Completeness int      `json:"completeness_score,omitempty"` // 0-10
	Missing      []string `json:"missing_elements,omitempty"`   // poor examples
	Suggestion   string   `json:"suggestion,omitempty"`
}

// IssueFeedback reports issue description quality
type IssueFeedback struct {
	Source          Source         `json:"source"`
	TotalIssues     int            `json:"total_issues"`
	WellDescribed   int            `json:"well_described"`
	PoorlyDescribed int            `json:"poorly_described"`
	Suggestions     []string       `json:"suggestions"`
	ExamplesGood    []IssueExample `json:"examples_good"`
	ExamplesPoor    []IssueExample `json:"examples_poor"`
}

// Report bundles the four category results for one run.
// A nil block means that category had nothing to analyze
type Report struct {
	Commits *CommitFeedback `json:"commit_feedback,omitempty"`
	Titles  *TitleFeedback  `json:"pr_title_feedback,omitempty"`
	Reviews *ReviewFeedback `json:"review_tone_feedback,omitempty"`
	Issues  *IssueFeedback  `json:"issue_feedback,omitempty"`
}
