package filter

import (
	"testing"
)

func TestMatchesBranch(t *testing.T) {
	tests := []struct {
		name   string
		spec   Spec
		branch string
		want   bool
	}{
		{"empty spec matches all", Spec{}, "main", true},
		{"included branch passes", Spec{IncludeBranches: []string{"main", "develop"}}, "develop", true},
		{"non-included branch fails", Spec{IncludeBranches: []string{"main"}}, "feature/x", false},
		{"excluded branch fails", Spec{ExcludeBranches: []string{"gh-pages"}}, "gh-pages", false},
		{
			"exclude wins over include",
			Spec{IncludeBranches: []string{"main"}, ExcludeBranches: []string{"main"}},
			"main",
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.spec.MatchesBranch(tc.branch); got != tc.want {
				t.Fatalf("MatchesBranch(%q) = %v, want %v", tc.branch, got, tc.want)
			}
		})
	}
}

func TestMatchesPullBranches(t *testing.T) {
	tests := []struct {
		name       string
		spec       Spec
		base, head string
		want       bool
	}{
		{"empty spec matches all", Spec{}, "main", "feature/x", true},
		{"base in include passes", Spec{IncludeBranches: []string{"main"}}, "main", "feature/x", true},
		{"head in include passes", Spec{IncludeBranches: []string{"hotfix"}}, "main", "hotfix", true},
		{"neither ref included fails", Spec{IncludeBranches: []string{"develop"}}, "main", "feature/x", false},
		{"excluded head rejects", Spec{ExcludeBranches: []string{"wip"}}, "main", "wip", false},
		{"excluded base rejects", Spec{ExcludeBranches: []string{"legacy"}}, "legacy", "feature/x", false},
		{
			"exclude wins over include",
			Spec{IncludeBranches: []string{"main"}, ExcludeBranches: []string{"wip"}},
			"main",
			"wip",
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.spec.MatchesPullBranches(tc.base, tc.head); got != tc.want {
				t.Fatalf("MatchesPullBranches(%q, %q) = %v, want %v", tc.base, tc.head, got, tc.want)
			}
		})
	}
}

func TestPathMatches(t *testing.T) {
	if !PathMatches("src/app.py", "src/") {
		t.Fatalf("expected prefix match")
	}
	if PathMatches("docs/readme.md", "src/") {
		t.Fatalf("unexpected prefix match")
	}
	if !PathMatches("anything/at/all", "") {
		t.Fatalf("empty prefix must match everything")
	}
}

func TestMatchesPath(t *testing.T) {
	spec := Spec{
		IncludePaths: []string{"src/", "cmd/"},
		ExcludePaths: []string{"src/gen/"},
	}
	if !spec.MatchesPath("src/app.py") {
		t.Fatalf("included path rejected")
	}
	if !spec.MatchesPath("cmd/main.go") {
		t.Fatalf("second include prefix rejected")
	}
	if spec.MatchesPath("docs/guide.md") {
		t.Fatalf("non-included path accepted")
	}
	if spec.MatchesPath("src/gen/api.go") {
		t.Fatalf("exclude must win over include")
	}
	if !(Spec{}).MatchesPath("anything") {
		t.Fatalf("empty spec must match every path")
	}
}

func TestMatchesFiles(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		files []string
		want  bool
	}{
		{"no filters passes", Spec{}, nil, true},
		{"no filters passes with files", Spec{}, []string{"a.py"}, true},
		{
			"include path hit",
			Spec{IncludePaths: []string{"src/"}},
			[]string{"docs/x.md", "src/app.py"},
			true,
		},
		{
			"include path miss",
			Spec{IncludePaths: []string{"src/"}},
			[]string{"docs/x.md"},
			false,
		},
		{
			"include path with empty file list fails",
			Spec{IncludePaths: []string{"src/"}},
			nil,
			false,
		},
		{
			"one excluded file poisons the record",
			Spec{ExcludePaths: []string{"vendor/"}},
			[]string{"src/app.py", "vendor/lib.js"},
			false,
		},
		{
			"exclude miss passes",
			Spec{ExcludePaths: []string{"vendor/"}},
			[]string{"src/app.py"},
			true,
		},
		{
			"language intersection hit",
			Spec{IncludeLanguages: []string{"python"}},
			[]string{"src/app.py", "README.md"},
			true,
		},
		{
			"language intersection miss",
			Spec{IncludeLanguages: []string{"rust"}},
			[]string{"src/app.py"},
			false,
		},
		{
			"paths and languages combine",
			Spec{IncludePaths: []string{"src/"}, IncludeLanguages: []string{"go"}},
			[]string{"src/main.go"},
			true,
		},
		{
			"path passes but language fails",
			Spec{IncludePaths: []string{"src/"}, IncludeLanguages: []string{"rust"}},
			[]string{"src/main.go"},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.spec.MatchesFiles(tc.files); got != tc.want {
				t.Fatalf("MatchesFiles(%v) = %v, want %v", tc.files, got, tc.want)
			}
		})
	}
}

func TestMatchesLanguage(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		files   []string
		want    bool
	}{
		{"empty include matches all", nil, []string{"weird.xyz"}, true},
		{"extension form", []string{"py"}, []string{"app.py"}, true},
		{"dotted extension form", []string{".py"}, []string{"app.py"}, true},
		{"language name form", []string{"Python"}, []string{"app.py"}, true},
		{"mixed case folds", []string{" TypeScript "}, []string{"web/index.tsx"}, true},
		{"unknown extension matches raw token", []string{"proto"}, []string{"api/v1.proto"}, true},
		{"no extension never matches", []string{"sh"}, []string{"Makefile"}, false},
		{"miss", []string{"rb"}, []string{"app.py", "main.go"}, false},
		{"blank entries ignored", []string{" ", ""}, []string{"weird.xyz"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := Spec{IncludeLanguages: tc.include}
			if got := spec.MatchesLanguage(tc.files); got != tc.want {
				t.Fatalf("MatchesLanguage(%v) with %v = %v, want %v", tc.files, tc.include, got, tc.want)
			}
		})
	}
}

func TestIsBot(t *testing.T) {
	if !IsBot("dependabot[bot]", "") {
		t.Fatalf("[bot] suffix should match")
	}
	if !IsBot("Renovate[Bot]", "") {
		t.Fatalf("suffix match should be case-insensitive")
	}
	if !IsBot("custom-ci", "Bot") {
		t.Fatalf("account type Bot should match")
	}
	if IsBot("alice", "User") {
		t.Fatalf("regular user flagged as bot")
	}
	if IsBot("botany-fan", "User") {
		t.Fatalf("substring must not match")
	}
}

func TestExcludesAuthor(t *testing.T) {
	on := Spec{ExcludeBots: true}
	off := Spec{}

	if !on.ExcludesAuthor("dependabot[bot]", "Bot") {
		t.Fatalf("bot not excluded while exclusion enabled")
	}
	if on.ExcludesAuthor("alice", "User") {
		t.Fatalf("human excluded")
	}
	if on.ExcludesAuthor("", "") {
		t.Fatalf("record without an author must be kept")
	}
	if off.ExcludesAuthor("dependabot[bot]", "Bot") {
		t.Fatalf("bot excluded while exclusion disabled")
	}
}

func TestIssueFileHints(t *testing.T) {
	files := []string{"src/app.py"}
	labels := []string{"bug", "path:src/server.py", "file:docs/api.md", "priority:high"}

	got := IssueFileHints(files, labels)
	want := []string{"src/app.py", "src/server.py", "docs/api.md"}
	if len(got) != len(want) {
		t.Fatalf("IssueFileHints = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IssueFileHints[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := IssueFileHints(nil, nil); len(got) != 0 {
		t.Fatalf("expected no hints, got %v", got)
	}
}

func TestLanguageForFile(t *testing.T) {
	tests := []struct {
		file string
		lang string
		ok   bool
	}{
		{"app.py", "Python", true},
		{"web/index.TSX", "TypeScript", true},
		{"lib.rs", "Rust", true},
		{"notes.txt", "", false},
		{"Makefile", "", false},
		{"trailing.", "", false},
	}
	for _, tc := range tests {
		lang, ok := LanguageForFile(tc.file)
		if lang != tc.lang || ok != tc.ok {
			t.Fatalf("LanguageForFile(%q) = (%q, %v), want (%q, %v)", tc.file, lang, ok, tc.lang, tc.ok)
		}
	}
}

func TestHasFileFilters(t *testing.T) {
	if (Spec{}).HasFileFilters() {
		t.Fatalf("empty spec reports file filters")
	}
	if (Spec{IncludeBranches: []string{"main"}, ExcludeBots: true}).HasFileFilters() {
		t.Fatalf("branch and bot filters are not file filters")
	}
	if !(Spec{ExcludePaths: []string{"vendor/"}}).HasFileFilters() {
		t.Fatalf("exclude path not reported")
	}
	if !(Spec{IncludeLanguages: []string{"go"}}).HasFileFilters() {
		t.Fatalf("language filter not reported")
	}
}
