// Package classifier sends extracted log excerpts to the model and parses the
// structured per-file classification.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crosscut-io/crosscut/internal/extractor"
	"github.com/crosscut-io/crosscut/internal/llm"
	"github.com/rs/zerolog/log"
)

// ErrorRecord is one classified error. Never mutated after creation.
type ErrorRecord struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Causes   []string `json:"causes"`
}

// FileReport is the classification fragment for one log file.
type FileReport struct {
	Filename    string        `json:"filename"`
	Records     []ErrorRecord `json:"records"`
	KeyFindings []string      `json:"key_findings"`
	Severity    Severity      `json:"severity"`
}

// ClassificationError reports a model response that stayed unparseable after
// the single stricter re-ask. Raw carries the final response for diagnostics.
type ClassificationError struct {
	Filename string
	Raw      string
	Err      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification of %q failed: %v", e.Filename, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// classificationResponse is the wire shape requested from the model. Severity
// stays a plain string here; coercion to the enum happens at the parse boundary.
type classificationResponse struct {
	Errors []struct {
		ErrorType string   `json:"error_type" jsonschema:"description=Brief error type or category"`
		Severity  string   `json:"severity" jsonschema:"description=One of: Critical High Medium Low"`
		Message   string   `json:"message" jsonschema:"description=Error message summary"`
		Causes    []string `json:"causes" jsonschema:"description=Specific root causes"`
	} `json:"errors"`
	KeyFindings []string `json:"key_findings" jsonschema:"description=Key observations across the excerpt"`
}

type Classifier struct {
	completer llm.Completer
}

func New(completer llm.Completer) *Classifier {
	return &Classifier{completer: completer}
}

// ClassifyFile runs one classification round trip for a single excerpt. An
// empty excerpt short-circuits to an empty report without calling the model.
func (c *Classifier) ClassifyFile(ctx context.Context, ex extractor.Excerpt) (FileReport, error) {
	if ex.Empty() {
		log.Info().Str("file", ex.File).Msg("No error lines extracted, skipping classification")
		return FileReport{Filename: ex.File}, nil
	}

	schema := llm.SchemaFor(&classificationResponse{})
	prompt := classifyPrompt(ex.File, ex.Text)

	raw, err := c.completer.Complete(ctx, llm.Request{
		System: systemPrompt,
		Prompt: prompt,
		Schema: schema,
	})
	if err != nil {
		return FileReport{}, err
	}

	resp, parseErr := parseResponse(raw)
	if parseErr != nil {
		log.Warn().Str("file", ex.File).Err(parseErr).Msg("Classification response unparseable, retrying with strict instruction")
		raw, err = c.completer.Complete(ctx, llm.Request{
			System: systemPrompt + strictRetryNote,
			Prompt: prompt,
			Schema: schema,
		})
		if err != nil {
			return FileReport{}, err
		}
		resp, parseErr = parseResponse(raw)
		if parseErr != nil {
			return FileReport{}, &ClassificationError{Filename: ex.File, Raw: raw, Err: parseErr}
		}
	}

	return toReport(ex.File, resp), nil
}

func parseResponse(raw string) (*classificationResponse, error) {
	var resp classificationResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func toReport(filename string, resp *classificationResponse) FileReport {
	report := FileReport{
		Filename:    filename,
		KeyFindings: resp.KeyFindings,
		Severity:    SeverityLow,
	}
	for _, e := range resp.Errors {
		rec := ErrorRecord{
			Type:     e.ErrorType,
			Severity: NormalizeSeverity(e.Severity),
			Message:  e.Message,
			Causes:   e.Causes,
		}
		if rec.Type == "" {
			rec.Type = "Unknown Error"
		}
		report.Records = append(report.Records, rec)
		report.Severity = MaxSeverity(report.Severity, rec.Severity)
	}
	return report
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite instructions.
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
