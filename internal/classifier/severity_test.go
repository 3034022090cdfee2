package classifier

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity ordering must be Low < Medium < High < Critical")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		input string
		want  Severity
		ok    bool
	}{
		{"Critical", SeverityCritical, true},
		{"HIGH", SeverityHigh, true},
		{"medium", SeverityMedium, true},
		{" low ", SeverityLow, true},
		{"fatal", SeverityCritical, true},
		{"bogus", SeverityMedium, false},
		{"", SeverityMedium, false},
	}
	for _, c := range cases {
		got, ok := ParseSeverity(c.input)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseSeverity(%q): got (%v, %v), want (%v, %v)", c.input, got, ok, c.want, c.ok)
		}
	}
}

func TestMaxSeverity(t *testing.T) {
	if got := MaxSeverity(SeverityLow, SeverityCritical); got != SeverityCritical {
		t.Errorf("MaxSeverity: got %v, want Critical", got)
	}
	if got := MaxSeverity(SeverityHigh, SeverityMedium); got != SeverityHigh {
		t.Errorf("MaxSeverity: got %v, want High", got)
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(SeverityCritical)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"Critical"` {
		t.Errorf("marshal: got %s", b)
	}

	var s Severity
	if err := json.Unmarshal([]byte(`"High"`), &s); err != nil {
		t.Fatal(err)
	}
	if s != SeverityHigh {
		t.Errorf("unmarshal: got %v, want High", s)
	}
}
