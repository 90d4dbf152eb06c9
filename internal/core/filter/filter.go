// Package filter implements the pure predicate logic shared by all collectors
package filter

import (
	"slices"
	"strings"
)

// Spec describes which activity records to keep.
// Empty include sets match everything; excludes always win.
// Built once per run from configuration and never mutated
type Spec struct {
	IncludeBranches  []string
	ExcludeBranches  []string
	IncludePaths     []string
	ExcludePaths     []string
	IncludeLanguages []string
	ExcludeBots      bool
}

// HasFileFilters reports whether any path or language narrowing is configured.
// Collectors use this to skip per-record file lookups when nothing would change
func (s Spec) HasFileFilters() bool {
	return len(s.IncludePaths) > 0 || len(s.ExcludePaths) > 0 || len(s.IncludeLanguages) > 0
}

// IsBot reports whether an account looks like an automation account.
// GitHub marks app identities with account type "Bot", and their logins
// carry a "[bot]" suffix (e.g. "dependabot[bot]")
func IsBot(login, accountType string) bool {
	if accountType == "Bot" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(login), "[bot]")
}

// ExcludesAuthor reports whether a record author should be dropped.
// Only applies when bot exclusion is enabled; records without an author are kept
func (s Spec) ExcludesAuthor(login, accountType string) bool {
	if !s.ExcludeBots {
		return false
	}
	if login == "" && accountType == "" {
		return false
	}
	return IsBot(login, accountType)
}

// MatchesBranch reports whether a branch name passes the include and exclude
// sets. An empty include set matches every branch
func (s Spec) MatchesBranch(name string) bool {
	if slices.Contains(s.ExcludeBranches, name) {
		return false
	}
	if len(s.IncludeBranches) == 0 {
		return true
	}
	return slices.Contains(s.IncludeBranches, name)
}

// MatchesPullBranches reports whether a pull request with the given base and
// head refs passes the branch filters. Either ref landing in the exclude set
// rejects the pull; a non-empty include set requires either ref to be named
func (s Spec) MatchesPullBranches(base, head string) bool {
	if slices.Contains(s.ExcludeBranches, base) || slices.Contains(s.ExcludeBranches, head) {
		return false
	}
	if len(s.IncludeBranches) == 0 {
		return true
	}
	return slices.Contains(s.IncludeBranches, base) || slices.Contains(s.IncludeBranches, head)
}

// PathMatches reports whether path falls under prefix.
// An empty prefix matches everything
func PathMatches(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(path, prefix)
}

// MatchesPath reports whether a single path passes the include and exclude
// prefix lists. An empty include list matches every path
func (s Spec) MatchesPath(path string) bool {
	for _, prefix := range s.ExcludePaths {
		if PathMatches(path, prefix) {
			return false
		}
	}
	if len(s.IncludePaths) == 0 {
		return true
	}
	for _, prefix := range s.IncludePaths {
		if PathMatches(path, prefix) {
			return true
		}
	}
	return false
}

// MatchesFiles reports whether a record touching the given files passes the
// path and language filters. Include filters need at least one matching file;
// a single excluded file rejects the whole record
func (s Spec) MatchesFiles(filenames []string) bool {
	if !s.HasFileFilters() {
		return true
	}
	if len(s.IncludePaths) > 0 && !anyPathMatches(filenames, s.IncludePaths) {
		return false
	}
	if len(s.ExcludePaths) > 0 && anyPathMatches(filenames, s.ExcludePaths) {
		return false
	}
	return s.MatchesLanguage(filenames)
}

// MatchesLanguage reports whether at least one filename is written in an
// included language. Include entries may be extensions ("py", ".go") or
// language names ("Python"); an empty include set matches everything
func (s Spec) MatchesLanguage(filenames []string) bool {
	wanted := normalizeLanguages(s.IncludeLanguages)
	if len(wanted) == 0 {
		return true
	}
	for _, f := range filenames {
		for _, tok := range languageTokens(f) {
			if _, ok := wanted[tok]; ok {
				return true
			}
		}
	}
	return false
}

// IssueFileHints returns the file paths an issue claims to touch: any explicit
// file list plus label names of the form "path:<p>" or "file:<p>"
func IssueFileHints(files, labels []string) []string {
	out := make([]string, 0, len(files)+len(labels))
	out = append(out, files...)
	for _, name := range labels {
		if rest, ok := strings.CutPrefix(name, "path:"); ok {
			out = append(out, rest)
		}
		if rest, ok := strings.CutPrefix(name, "file:"); ok {
			out = append(out, rest)
		}
	}
	return out
}

func anyPathMatches(filenames, prefixes []string) bool {
	for _, f := range filenames {
		for _, prefix := range prefixes {
			if PathMatches(f, prefix) {
				return true
			}
		}
	}
	return false
}
