// Package aggregator merges per-file classification fragments into one
// combined report. Pure functions only, no network calls.
package aggregator

import "github.com/crosscut-io/crosscut/internal/classifier"

// Report is the combined classification across all input files.
type Report struct {
	Records        []classifier.ErrorRecord `json:"records"`
	KeyFindings    []string                 `json:"key_findings"`
	Severity       classifier.Severity      `json:"aggregated_severity"`
	FilesProcessed int                      `json:"files_processed"`
	FilesWithHits  int                      `json:"files_with_hits"`
}

// Empty reports whether no error records were classified.
func (r Report) Empty() bool {
	return len(r.Records) == 0
}

// Aggregate combines fragments in input order. Aggregated severity is the max
// across inputs; key findings are deduplicated preserving first-seen order.
// Zero fragments yield an empty report, not an error.
func Aggregate(fragments []classifier.FileReport) Report {
	report := Report{
		Severity:       classifier.SeverityLow,
		FilesProcessed: len(fragments),
	}

	seen := make(map[string]struct{})
	for _, frag := range fragments {
		if len(frag.Records) > 0 {
			report.FilesWithHits++
		}
		report.Records = append(report.Records, frag.Records...)
		report.Severity = classifier.MaxSeverity(report.Severity, frag.Severity)

		for _, finding := range frag.KeyFindings {
			if _, ok := seen[finding]; ok {
				continue
			}
			seen[finding] = struct{}{}
			report.KeyFindings = append(report.KeyFindings, finding)
		}
	}

	return report
}

// TopRecord returns the highest-severity record, earliest first on ties. The
// second return is false for an empty report.
func TopRecord(r Report) (classifier.ErrorRecord, bool) {
	if len(r.Records) == 0 {
		return classifier.ErrorRecord{}, false
	}
	top := r.Records[0]
	for _, rec := range r.Records[1:] {
		if rec.Severity > top.Severity {
			top = rec
		}
	}
	return top, true
}
