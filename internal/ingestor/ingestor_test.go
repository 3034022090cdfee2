package ingestor

import (
	"strings"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestFlatten(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := []datadogV2.Log{
		{
			Attributes: &datadogV2.LogAttributes{
				Timestamp: timePtr(ts),
				Status:    strPtr("error"),
				Service:   strPtr("api"),
				Host:      strPtr("web-01"),
				Message:   strPtr("connection timeout"),
			},
		},
		{Attributes: nil},
		{
			Attributes: &datadogV2.LogAttributes{
				Status:  strPtr("info"),
				Message: strPtr("request handled"),
			},
		},
	}

	got := Flatten(logs)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2 (nil attributes skipped)", len(lines))
	}
	want := "2024-03-01T12:00:00Z ERROR [api] (web-01) connection timeout"
	if lines[0] != want {
		t.Errorf("first line:\ngot  %q\nwant %q", lines[0], want)
	}
	if lines[1] != "INFO request handled" {
		t.Errorf("second line: got %q", lines[1])
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := Flatten(nil); got != "" {
		t.Errorf("Flatten(nil): got %q, want empty", got)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if (Config{APIKey: "a"}).Enabled() {
		t.Error("config missing app key should be disabled")
	}
	if !(Config{APIKey: "a", AppKey: "b"}).Enabled() {
		t.Error("full config should be enabled")
	}
}
