package aggregator

import (
	"testing"

	"github.com/crosscut-io/crosscut/internal/classifier"
)

func fragment(file string, sev classifier.Severity, findings ...string) classifier.FileReport {
	return classifier.FileReport{
		Filename: file,
		Records: []classifier.ErrorRecord{
			{Type: file + "-error", Severity: sev, Message: "m"},
		},
		KeyFindings: findings,
		Severity:    sev,
	}
}

func TestAggregate_MaxSeverity(t *testing.T) {
	report := Aggregate([]classifier.FileReport{
		fragment("a.log", classifier.SeverityMedium),
		fragment("b.log", classifier.SeverityCritical),
		fragment("c.log", classifier.SeverityLow),
	})
	if report.Severity != classifier.SeverityCritical {
		t.Errorf("aggregated severity: got %v, want Critical", report.Severity)
	}
}

func TestAggregate_RecordsConcatenatedInOrder(t *testing.T) {
	report := Aggregate([]classifier.FileReport{
		fragment("a.log", classifier.SeverityLow),
		fragment("b.log", classifier.SeverityHigh),
	})
	if len(report.Records) != 2 {
		t.Fatalf("records: got %d, want 2", len(report.Records))
	}
	if report.Records[0].Type != "a.log-error" || report.Records[1].Type != "b.log-error" {
		t.Errorf("record order: got %q then %q", report.Records[0].Type, report.Records[1].Type)
	}
}

func TestAggregate_KeyFindingsDedupFirstSeen(t *testing.T) {
	report := Aggregate([]classifier.FileReport{
		fragment("a.log", classifier.SeverityLow, "db slow", "disk filling"),
		fragment("b.log", classifier.SeverityLow, "disk filling", "auth flaky"),
	})
	want := []string{"db slow", "disk filling", "auth flaky"}
	if len(report.KeyFindings) != len(want) {
		t.Fatalf("findings: got %v, want %v", report.KeyFindings, want)
	}
	for i, f := range want {
		if report.KeyFindings[i] != f {
			t.Errorf("finding %d: got %q, want %q", i, report.KeyFindings[i], f)
		}
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	report := Aggregate(nil)
	if !report.Empty() {
		t.Error("aggregating zero fragments should yield an empty report")
	}
	if report.Severity != classifier.SeverityLow {
		t.Errorf("empty severity: got %v, want Low", report.Severity)
	}
	if report.FilesProcessed != 0 {
		t.Errorf("files processed: got %d, want 0", report.FilesProcessed)
	}
}

func TestAggregate_CountsFilesWithHits(t *testing.T) {
	report := Aggregate([]classifier.FileReport{
		fragment("a.log", classifier.SeverityLow),
		{Filename: "quiet.log"},
	})
	if report.FilesProcessed != 2 {
		t.Errorf("files processed: got %d, want 2", report.FilesProcessed)
	}
	if report.FilesWithHits != 1 {
		t.Errorf("files with hits: got %d, want 1", report.FilesWithHits)
	}
}

func TestTopRecord(t *testing.T) {
	report := Aggregate([]classifier.FileReport{
		fragment("a.log", classifier.SeverityMedium),
		fragment("b.log", classifier.SeverityCritical),
	})
	top, ok := TopRecord(report)
	if !ok {
		t.Fatal("TopRecord: expected a record")
	}
	if top.Type != "b.log-error" {
		t.Errorf("top record: got %q, want b.log-error", top.Type)
	}

	if _, ok := TopRecord(Report{}); ok {
		t.Error("TopRecord on empty report should return false")
	}
}
