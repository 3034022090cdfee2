package classifier

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// Severity is the four-level ordinal impact classification,
// Low < Medium < High < Critical.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Medium"
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NormalizeSeverity(raw)
	return nil
}

// ParseSeverity maps a model-supplied string onto the enum.
func ParseSeverity(input string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "low", "info":
		return SeverityLow, true
	case "medium", "moderate":
		return SeverityMedium, true
	case "high":
		return SeverityHigh, true
	case "critical", "fatal":
		return SeverityCritical, true
	}
	return SeverityMedium, false
}

// NormalizeSeverity is ParseSeverity with a lenient fallback: unrecognized
// values default to Medium and are logged.
func NormalizeSeverity(input string) Severity {
	s, ok := ParseSeverity(input)
	if !ok {
		log.Warn().Str("value", input).Msg("Unrecognized severity, defaulting to Medium")
	}
	return s
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}
