package trends

import "math"

// TechStack is the language spread seen across changed files
type TechStack struct {
	Languages      map[string]int `json:"languages"`
	TopLanguages   []string       `json:"top_languages"`
	DiversityScore float64        `json:"diversity_score"`
}

// BuildTechStack ranks languages by file count and scores the spread.
// An empty count map means no files were seen and yields nil
func BuildTechStack(counts map[string]int) *TechStack {
	if len(counts) == 0 {
		return nil
	}
	return &TechStack{
		Languages:      counts,
		TopLanguages:   topNames(counts, topLanguages),
		DiversityScore: diversityScore(counts),
	}
}

// diversityScore is the Shannon entropy of the language distribution,
// normalized by the maximum entropy so the score lands in 0..1
func diversityScore(counts map[string]int) float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, n := range counts {
		if n > 0 {
			p := float64(n) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}

	maxEntropy := 1.0
	if len(counts) > 1 {
		maxEntropy = math.Log2(float64(len(counts)))
	}
	if maxEntropy <= 0 {
		return 0
	}
	return entropy / maxEntropy
}
