// Package solver asks the model for exactly three ranked solutions to the
// aggregated classification.
package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/crosscut-io/crosscut/internal/aggregator"
	"github.com/crosscut-io/crosscut/internal/llm"
	"github.com/rs/zerolog/log"
)

// Level is a three-step ordinal used for complexity and risk, Low < Medium < High.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low"
	case LevelHigh:
		return "High"
	default:
		return "Medium"
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = parseLevel(raw)
	return nil
}

func parseLevel(input string) Level {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "low":
		return LevelLow
	case "high":
		return LevelHigh
	default:
		return LevelMedium
	}
}

// Solution is one remediation option.
type Solution struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Steps         []string `json:"steps"`
	Effectiveness int      `json:"effectiveness"`
	Complexity    Level    `json:"complexity"`
	TimeEstimate  string   `json:"time_estimate"`
	Risk          Level    `json:"risk"`
}

// RequiredCount is the contract: every successful request yields exactly this
// many solutions.
const RequiredCount = 3

const unknownSentinel = "unknown"

// SolutionParseError reports fewer parsed solutions than the contract demands.
type SolutionParseError struct {
	Parsed int
	Raw    string
	Err    error
}

func (e *SolutionParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solution parsing failed: %v", e.Err)
	}
	return fmt.Sprintf("parsed %d solutions, need %d", e.Parsed, RequiredCount)
}

func (e *SolutionParseError) Unwrap() error { return e.Err }

type solutionResponse struct {
	Solutions []struct {
		Title         string   `json:"title" jsonschema:"description=Specific actionable solution title"`
		Description   string   `json:"description" jsonschema:"description=What this solution does and why it works"`
		Steps         []string `json:"steps" jsonschema:"description=Concrete implementation steps"`
		Effectiveness int      `json:"effectiveness" jsonschema:"description=Estimated effectiveness from 0 to 100"`
		Complexity    string   `json:"complexity" jsonschema:"description=One of: Low Medium High"`
		TimeEstimate  string   `json:"time_estimate" jsonschema:"description=Rough time estimate such as 5 minutes or 1 day"`
		Risk          string   `json:"risk" jsonschema:"description=One of: Low Medium High"`
	} `json:"solutions"`
}

type Finder struct {
	completer llm.Completer
}

func New(completer llm.Completer) *Finder {
	return &Finder{completer: completer}
}

// Find requests ranked solutions for the aggregated report. Post-condition:
// the returned slice has exactly RequiredCount entries sorted by effectiveness
// descending, ties broken by lower complexity.
func (f *Finder) Find(ctx context.Context, report aggregator.Report) ([]Solution, error) {
	raw, err := f.completer.Complete(ctx, llm.Request{
		System: solverSystemPrompt,
		Prompt: solutionPrompt(report),
		Schema: llm.SchemaFor(&solutionResponse{}),
	})
	if err != nil {
		return nil, err
	}

	var resp solutionResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, &SolutionParseError{Raw: raw, Err: err}
	}
	if len(resp.Solutions) < RequiredCount {
		return nil, &SolutionParseError{Parsed: len(resp.Solutions), Raw: raw}
	}

	solutions := make([]Solution, 0, len(resp.Solutions))
	for _, s := range resp.Solutions {
		sol := Solution{
			Title:         s.Title,
			Description:   s.Description,
			Steps:         s.Steps,
			Effectiveness: clampEffectiveness(s.Effectiveness),
			Complexity:    parseLevel(s.Complexity),
			TimeEstimate:  s.TimeEstimate,
			Risk:          parseLevel(s.Risk),
		}
		backfill(&sol)
		solutions = append(solutions, sol)
	}

	solutions = Rank(solutions)
	if len(solutions) > RequiredCount {
		log.Debug().Int("parsed", len(solutions)).Msg("Model returned extra solutions, keeping top 3")
		solutions = solutions[:RequiredCount]
	}

	return solutions, nil
}

// Rank sorts by effectiveness descending, breaking ties with lower complexity.
// Idempotent: ranking an already-ranked slice leaves it unchanged.
func Rank(solutions []Solution) []Solution {
	sort.SliceStable(solutions, func(i, j int) bool {
		if solutions[i].Effectiveness != solutions[j].Effectiveness {
			return solutions[i].Effectiveness > solutions[j].Effectiveness
		}
		return solutions[i].Complexity < solutions[j].Complexity
	})
	return solutions
}

// backfill fills missing fields with explicit unknown sentinels rather than
// failing the stage.
func backfill(s *Solution) {
	if s.Title == "" {
		s.Title = unknownSentinel
	}
	if s.Description == "" {
		s.Description = unknownSentinel
	}
	if len(s.Steps) == 0 {
		s.Steps = []string{unknownSentinel}
	}
	if s.TimeEstimate == "" {
		s.TimeEstimate = unknownSentinel
	}
}

func clampEffectiveness(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
