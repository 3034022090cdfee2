package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crosscut-io/crosscut/internal/fuzzy"
	"github.com/crosscut-io/crosscut/internal/logfile"
)

// Config tunes how much of each log file is forwarded to the model.
type Config struct {
	Keywords     []string
	ContextLines int
	MaxChars     int
}

var DefaultKeywords = []string{
	"error", "exception", "failed", "failure", "fatal",
	"traceback", "stack trace", "panic", "critical",
	"abort", "timeout", "denied", "forbidden",
}

func DefaultConfig() Config {
	return Config{
		Keywords:     DefaultKeywords,
		ContextLines: 2,
		MaxChars:     8000,
	}
}

// Excerpt is the keyword-filtered portion of one log file.
type Excerpt struct {
	File       string
	Text       string
	MatchCount int
}

// Empty reports whether no line matched any keyword.
func (e Excerpt) Empty() bool {
	return e.MatchCount == 0
}

// Extract scans the file for error-indicating lines and returns them with the
// configured context, capped at the character budget. A file with no matching
// lines yields an empty excerpt, not an error.
func Extract(f logfile.File, cfg Config) (Excerpt, error) {
	if err := logfile.Validate(f); err != nil {
		return Excerpt{}, err
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultConfig().MaxChars
	}

	lines := strings.Split(f.Content, "\n")
	matches := matchIndices(lines, cfg.Keywords)
	if len(matches) == 0 {
		return Excerpt{File: f.Name}, nil
	}

	selected := withContext(matches, cfg.ContextLines, len(lines))
	picked := make([]string, 0, len(selected))
	for _, idx := range selected {
		picked = append(picked, lines[idx])
	}

	text := strings.Join(picked, "\n")
	if len(text) > cfg.MaxChars {
		text = compact(picked, matches, lines, cfg.MaxChars)
	}

	return Excerpt{
		File:       f.Name,
		Text:       text,
		MatchCount: len(matches),
	}, nil
}

func matchIndices(lines []string, keywords []string) []int {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	var matches []int
	for i, line := range lines {
		ll := strings.ToLower(line)
		for _, kw := range lowered {
			if kw != "" && strings.Contains(ll, kw) {
				matches = append(matches, i)
				break
			}
		}
	}
	return matches
}

// withContext expands each match by n lines on either side, merges overlapping
// windows, and returns the selected indices in order.
func withContext(matches []int, n, total int) []int {
	selected := make(map[int]struct{})
	for _, m := range matches {
		lo := m - n
		if lo < 0 {
			lo = 0
		}
		hi := m + n
		if hi > total-1 {
			hi = total - 1
		}
		for i := lo; i <= hi; i++ {
			selected[i] = struct{}{}
		}
	}

	out := make([]int, 0, len(selected))
	for i := range selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// compact falls back to matched lines only, collapses near duplicates, and as a
// last resort keeps the tail of the budget since the most recent errors matter
// most.
func compact(picked []string, matches []int, lines []string, budget int) string {
	matched := make([]string, 0, len(matches))
	for _, idx := range matches {
		matched = append(matched, lines[idx])
	}

	collapsed := fuzzy.Collapse(matched)
	parts := make([]string, 0, len(collapsed))
	for _, c := range collapsed {
		if c.Count > 1 {
			parts = append(parts, fmt.Sprintf("%s (repeated %d times)", c.Line, c.Count))
		} else {
			parts = append(parts, c.Line)
		}
	}

	text := strings.Join(parts, "\n")
	if len(text) <= budget {
		return text
	}

	text = text[len(text)-budget:]
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && nl < len(text)-1 {
		text = text[nl+1:]
	}
	return text
}
