package solver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/crosscut-io/crosscut/internal/aggregator"
	"github.com/crosscut-io/crosscut/internal/classifier"
	"github.com/crosscut-io/crosscut/internal/llm"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _ llm.Request) (string, error) {
	f.calls++
	return f.response, f.err
}

func reportFixture() aggregator.Report {
	return aggregator.Report{
		Records: []classifier.ErrorRecord{
			{Type: "Database Connection Timeout", Severity: classifier.SeverityHigh, Message: "timeout"},
		},
		KeyFindings: []string{"db under pressure"},
		Severity:    classifier.SeverityHigh,
	}
}

func solutionJSON(title string, effectiveness int, complexity string) string {
	return fmt.Sprintf(`{"title": %q, "description": "d", "steps": ["s1"], "effectiveness": %d, "complexity": %q, "time_estimate": "1 hour", "risk": "Low"}`,
		title, effectiveness, complexity)
}

func TestFind_ExactlyThreeSorted(t *testing.T) {
	resp := fmt.Sprintf(`{"solutions": [%s, %s, %s]}`,
		solutionJSON("a", 40, "Low"),
		solutionJSON("b", 90, "Medium"),
		solutionJSON("c", 70, "High"),
	)
	f := New(&fakeCompleter{response: resp})

	solutions, err := f.Find(context.Background(), reportFixture())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(solutions) != RequiredCount {
		t.Fatalf("solutions: got %d, want %d", len(solutions), RequiredCount)
	}
	for i := 1; i < len(solutions); i++ {
		if solutions[i].Effectiveness > solutions[i-1].Effectiveness {
			t.Errorf("not sorted descending at %d: %d > %d", i, solutions[i].Effectiveness, solutions[i-1].Effectiveness)
		}
	}
	if solutions[0].Title != "b" {
		t.Errorf("top solution: got %q, want b", solutions[0].Title)
	}
}

func TestFind_TieBrokenByLowerComplexity(t *testing.T) {
	resp := fmt.Sprintf(`{"solutions": [%s, %s, %s]}`,
		solutionJSON("hard", 80, "High"),
		solutionJSON("easy", 80, "Low"),
		solutionJSON("other", 10, "Medium"),
	)
	f := New(&fakeCompleter{response: resp})

	solutions, err := f.Find(context.Background(), reportFixture())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if solutions[0].Title != "easy" {
		t.Errorf("tie break: got %q first, want easy (lower complexity)", solutions[0].Title)
	}
}

func TestFind_FewerThanThreeIsError(t *testing.T) {
	resp := fmt.Sprintf(`{"solutions": [%s, %s]}`,
		solutionJSON("a", 50, "Low"),
		solutionJSON("b", 60, "Low"),
	)
	f := New(&fakeCompleter{response: resp})

	_, err := f.Find(context.Background(), reportFixture())
	var perr *SolutionParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected SolutionParseError, got %v", err)
	}
	if perr.Parsed != 2 {
		t.Errorf("parsed count: got %d, want 2", perr.Parsed)
	}
}

func TestFind_MalformedJSONIsError(t *testing.T) {
	f := New(&fakeCompleter{response: "not json at all"})

	_, err := f.Find(context.Background(), reportFixture())
	var perr *SolutionParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected SolutionParseError, got %v", err)
	}
	if perr.Raw != "not json at all" {
		t.Errorf("raw attached: got %q", perr.Raw)
	}
}

func TestFind_MoreThanThreeTruncatedAfterSort(t *testing.T) {
	resp := fmt.Sprintf(`{"solutions": [%s, %s, %s, %s]}`,
		solutionJSON("low", 10, "Low"),
		solutionJSON("best", 95, "Low"),
		solutionJSON("mid", 50, "Low"),
		solutionJSON("good", 80, "Low"),
	)
	f := New(&fakeCompleter{response: resp})

	solutions, err := f.Find(context.Background(), reportFixture())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(solutions) != 3 {
		t.Fatalf("solutions: got %d, want 3", len(solutions))
	}
	if solutions[0].Title != "best" || solutions[2].Title != "mid" {
		t.Errorf("truncation should keep the top 3: got %q..%q", solutions[0].Title, solutions[2].Title)
	}
}

func TestFind_BackfillsMissingFields(t *testing.T) {
	resp := `{"solutions": [
		{"effectiveness": 70},
		{"title": "b", "description": "d", "steps": ["s"], "effectiveness": 60, "complexity": "Low", "time_estimate": "1h", "risk": "Low"},
		{"title": "c", "description": "d", "steps": ["s"], "effectiveness": 50, "complexity": "Low", "time_estimate": "1h", "risk": "Low"}
	]}`
	f := New(&fakeCompleter{response: resp})

	solutions, err := f.Find(context.Background(), reportFixture())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	top := solutions[0]
	if top.Title != "unknown" || top.Description != "unknown" || top.TimeEstimate != "unknown" {
		t.Errorf("missing fields should be backfilled with unknown sentinels: %+v", top)
	}
	if len(top.Steps) != 1 || top.Steps[0] != "unknown" {
		t.Errorf("steps backfill: got %v", top.Steps)
	}
	if top.Complexity != LevelMedium || top.Risk != LevelMedium {
		t.Errorf("level backfill: got complexity %v risk %v, want Medium", top.Complexity, top.Risk)
	}
}

func TestFind_RateLimitPropagates(t *testing.T) {
	rl := &llm.RateLimitError{Provider: llm.ProviderOpenAI, Err: errors.New("429")}
	f := New(&fakeCompleter{err: rl})

	_, err := f.Find(context.Background(), reportFixture())
	var got *llm.RateLimitError
	if !errors.As(err, &got) {
		t.Fatalf("rate limit should propagate unchanged, got %v", err)
	}
}

func TestRank_Idempotent(t *testing.T) {
	solutions := []Solution{
		{Title: "a", Effectiveness: 90, Complexity: LevelLow},
		{Title: "b", Effectiveness: 70, Complexity: LevelMedium},
		{Title: "c", Effectiveness: 70, Complexity: LevelHigh},
	}
	once := Rank(append([]Solution(nil), solutions...))
	twice := Rank(append([]Solution(nil), once...))
	for i := range once {
		if once[i].Title != twice[i].Title {
			t.Errorf("Rank not idempotent at %d: %q vs %q", i, once[i].Title, twice[i].Title)
		}
	}
}

func TestClampEffectiveness(t *testing.T) {
	if got := clampEffectiveness(-5); got != 0 {
		t.Errorf("clamp(-5): got %d, want 0", got)
	}
	if got := clampEffectiveness(250); got != 100 {
		t.Errorf("clamp(250): got %d, want 100", got)
	}
	if got := clampEffectiveness(55); got != 55 {
		t.Errorf("clamp(55): got %d, want 55", got)
	}
}
