package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/crosscut-io/crosscut/internal/extractor"
	"github.com/crosscut-io/crosscut/internal/llm"
)

// fakeCompleter replays canned responses in order.
type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
	requests  []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i >= len(f.responses) {
		return "", errors.New("no more canned responses")
	}
	return f.responses[i], nil
}

const validResponse = `{
	"errors": [
		{"error_type": "Database Connection Timeout", "severity": "High", "message": "connection to db timed out", "causes": ["pool exhausted"]},
		{"error_type": "Disk Full", "severity": "Critical", "message": "no space left on device", "causes": ["log rotation disabled"]}
	],
	"key_findings": ["db under pressure"]
}`

func excerptFixture() extractor.Excerpt {
	return extractor.Excerpt{File: "app.log", Text: "ERROR: connection to db timed out", MatchCount: 1}
}

func TestClassifyFile_Success(t *testing.T) {
	fake := &fakeCompleter{responses: []string{validResponse}}
	c := New(fake)

	report, err := c.ClassifyFile(context.Background(), excerptFixture())
	if err != nil {
		t.Fatalf("ClassifyFile: %v", err)
	}
	if report.Filename != "app.log" {
		t.Errorf("filename: got %q", report.Filename)
	}
	if len(report.Records) != 2 {
		t.Fatalf("records: got %d, want 2", len(report.Records))
	}
	if report.Records[0].Severity != SeverityHigh {
		t.Errorf("first severity: got %v, want High", report.Records[0].Severity)
	}
	if report.Severity != SeverityCritical {
		t.Errorf("file severity: got %v, want Critical (max of records)", report.Severity)
	}
	if len(report.KeyFindings) != 1 || report.KeyFindings[0] != "db under pressure" {
		t.Errorf("key findings: got %v", report.KeyFindings)
	}
	if fake.calls != 1 {
		t.Errorf("completer calls: got %d, want 1", fake.calls)
	}
}

func TestClassifyFile_FencedJSONAccepted(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"```json\n" + validResponse + "\n```"}}
	c := New(fake)

	report, err := c.ClassifyFile(context.Background(), excerptFixture())
	if err != nil {
		t.Fatalf("ClassifyFile: %v", err)
	}
	if len(report.Records) != 2 {
		t.Errorf("records: got %d, want 2", len(report.Records))
	}
}

func TestClassifyFile_RetryRecovers(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"definitely not json", validResponse}}
	c := New(fake)

	report, err := c.ClassifyFile(context.Background(), excerptFixture())
	if err != nil {
		t.Fatalf("ClassifyFile after retry: %v", err)
	}
	if fake.calls != 2 {
		t.Errorf("completer calls: got %d, want 2", fake.calls)
	}
	if len(report.Records) != 2 {
		t.Errorf("records: got %d, want 2", len(report.Records))
	}
	// Second attempt carries the stricter instruction.
	if len(fake.requests) == 2 && fake.requests[1].System == fake.requests[0].System {
		t.Error("retry should use a stricter system instruction")
	}
}

func TestClassifyFile_DoubleFailure(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"garbage one", "garbage two"}}
	c := New(fake)

	_, err := c.ClassifyFile(context.Background(), excerptFixture())
	var cerr *ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
	if cerr.Raw != "garbage two" {
		t.Errorf("raw response attached: got %q, want the second reply", cerr.Raw)
	}
	if cerr.Filename != "app.log" {
		t.Errorf("filename: got %q", cerr.Filename)
	}
}

func TestClassifyFile_RateLimitPropagates(t *testing.T) {
	rl := &llm.RateLimitError{Provider: llm.ProviderAnthropic, Err: errors.New("429")}
	fake := &fakeCompleter{errs: []error{rl}}
	c := New(fake)

	_, err := c.ClassifyFile(context.Background(), excerptFixture())
	var got *llm.RateLimitError
	if !errors.As(err, &got) {
		t.Fatalf("rate limit should propagate unchanged, got %v", err)
	}
}

func TestClassifyFile_EmptyExcerptSkipsModel(t *testing.T) {
	fake := &fakeCompleter{}
	c := New(fake)

	report, err := c.ClassifyFile(context.Background(), extractor.Excerpt{File: "quiet.log"})
	if err != nil {
		t.Fatalf("ClassifyFile: %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("completer should not be called for empty excerpts, got %d calls", fake.calls)
	}
	if len(report.Records) != 0 {
		t.Errorf("records: got %d, want 0", len(report.Records))
	}
}

func TestClassifyFile_UnknownSeverityDefaultsMedium(t *testing.T) {
	resp := `{"errors": [{"error_type": "Weird", "severity": "catastrophic", "message": "m", "causes": []}], "key_findings": []}`
	fake := &fakeCompleter{responses: []string{resp}}
	c := New(fake)

	report, err := c.ClassifyFile(context.Background(), excerptFixture())
	if err != nil {
		t.Fatalf("ClassifyFile: %v", err)
	}
	if report.Records[0].Severity != SeverityMedium {
		t.Errorf("severity: got %v, want Medium default", report.Records[0].Severity)
	}
}
