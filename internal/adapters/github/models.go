package github

import (
	"encoding/json"
	"time"
)

// Account is the slim user or bot document embedded in most resources
type Account struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// CommitAuthor is the git-level author stamp on a commit
type CommitAuthor struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// CommitBody is the nested git data on a commit listing entry
type CommitBody struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// Commit is a partial commit listing document with fields we use
type Commit struct {
	SHA     string     `json:"sha"`
	Commit  CommitBody `json:"commit"`
	Author  *Account   `json:"author"`
	HTMLURL string     `json:"html_url"`
}

// CommitDetail is the single-commit document carrying the changed file list
type CommitDetail struct {
	SHA   string `json:"sha"`
	Files []struct {
		Filename string `json:"filename"`
	} `json:"files"`
}

// Branch is one entry from the repo branches listing
type Branch struct {
	Name string `json:"name"`
}

// Ref names one side of a pull request
type Ref struct {
	Ref string `json:"ref"`
}

// Label is a partial label document
type Label struct {
	Name string `json:"name"`
}

// PullRequest is a partial pull request document covering both the listing
// and detail payloads. Additions, deletions, and changed_files only arrive
// on the detail payload
type PullRequest struct {
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	State        string     `json:"state"`
	User         *Account   `json:"user"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	MergedAt     *time.Time `json:"merged_at"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changed_files"`
	Base         *Ref       `json:"base"`
	Head         *Ref       `json:"head"`
	Labels       []Label    `json:"labels"`
	HTMLURL      string     `json:"html_url"`
}

// BaseRef returns the target branch name or empty
func (p *PullRequest) BaseRef() string {
	if p.Base == nil {
		return ""
	}
	return p.Base.Ref
}

// HeadRef returns the source branch name or empty
func (p *PullRequest) HeadRef() string {
	if p.Head == nil {
		return ""
	}
	return p.Head.Ref
}

// PullRequestFile is one changed file in a pull request
type PullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// Review is one submitted pull request review. SubmittedAt stays zero for
// pending reviews
type Review struct {
	User        *Account  `json:"user"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
	HTMLURL     string    `json:"html_url"`
}

// Issue is one issues listing entry. Pull requests surface in this listing
// too; the pull_request link marks them
type Issue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	State       string          `json:"state"`
	User        *Account        `json:"user"`
	Labels      []Label         `json:"labels"`
	CreatedAt   time.Time       `json:"created_at"`
	HTMLURL     string          `json:"html_url"`
	PullRequest json.RawMessage `json:"pull_request"`
}

// IsPullRequest reports whether this issues entry is really a pull request
func (i *Issue) IsPullRequest() bool { return len(i.PullRequest) > 0 }

// User is the authenticated user document
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Repo is a partial repository document from the viewer repo listing
type Repo struct {
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Private     bool      `json:"private"`
	Fork        bool      `json:"fork"`
	Archived    bool      `json:"archived"`
	Language    string    `json:"language"`
	Stargazers  int       `json:"stargazers_count"`
	ForksCount  int       `json:"forks_count"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}
