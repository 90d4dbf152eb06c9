package filter

import "strings"

// languageByExtension maps lowercase file extensions to display names.
// Only languages the report layer knows how to label are listed; anything
// else matches by raw extension only
var languageByExtension = map[string]string{
	"py":    "Python",
	"js":    "JavaScript",
	"ts":    "TypeScript",
	"tsx":   "TypeScript",
	"jsx":   "JavaScript",
	"rb":    "Ruby",
	"go":    "Go",
	"rs":    "Rust",
	"java":  "Java",
	"cs":    "C#",
	"cpp":   "C++",
	"cxx":   "C++",
	"cc":    "C++",
	"c":     "C",
	"kt":    "Kotlin",
	"swift": "Swift",
	"php":   "PHP",
	"scala": "Scala",
	"m":     "Objective-C",
	"mm":    "Objective-C++",
	"hs":    "Haskell",
	"r":     "R",
	"pl":    "Perl",
	"sh":    "Shell",
	"ps1":   "PowerShell",
	"dart":  "Dart",
	"md":    "Markdown",
	"yml":   "YAML",
	"yaml":  "YAML",
	"json":  "JSON",
}

// LanguageForFile returns the display-name language for a filename.
// ok is false when the filename has no extension or the extension is unknown
func LanguageForFile(filename string) (lang string, ok bool) {
	ext := extensionOf(filename)
	if ext == "" {
		return "", false
	}
	lang, ok = languageByExtension[ext]
	return lang, ok
}

// extensionOf returns the lowercased final extension without its dot,
// or "" when the filename carries none
func extensionOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// languageTokens returns the match tokens for one filename: its extension
// plus the lowered language name when the extension is known
func languageTokens(filename string) []string {
	ext := extensionOf(filename)
	if ext == "" {
		return nil
	}
	if lang, ok := languageByExtension[ext]; ok {
		return []string{ext, strings.ToLower(lang)}
	}
	return []string{ext}
}

// normalizeLanguages lowers the include entries and strips leading dots
// (" .PY" becomes "py"); blank entries are dropped
func normalizeLanguages(include []string) map[string]struct{} {
	if len(include) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(include))
	for _, v := range include {
		tok := strings.TrimLeft(strings.ToLower(strings.TrimSpace(v)), ".")
		if tok == "" {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}
