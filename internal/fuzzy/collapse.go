package fuzzy

// CollapsedLine is one representative line plus how many inputs it stands for.
type CollapsedLine struct {
	Line  string
	Count int
}

const DefaultSimilarityThreshold = 0.85

// Collapse merges lines that are exact or near duplicates after normalization,
// preserving first-seen order. The first occurrence is kept as the
// representative.
func Collapse(lines []string) []CollapsedLine {
	return CollapseWithThreshold(lines, DefaultSimilarityThreshold)
}

func CollapseWithThreshold(lines []string, threshold float64) []CollapsedLine {
	var out []CollapsedLine
	var templates []string

	for _, line := range lines {
		norm := Normalize(line)
		matched := false
		for i, tpl := range templates {
			if norm == tpl || similarity(norm, tpl) >= threshold {
				out[i].Count++
				matched = true
				break
			}
		}
		if !matched {
			templates = append(templates, norm)
			out = append(out, CollapsedLine{Line: line, Count: 1})
		}
	}

	return out
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
