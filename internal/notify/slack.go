package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/crosscut-io/crosscut/internal/aggregator"
	"github.com/crosscut-io/crosscut/internal/classifier"
	"github.com/crosscut-io/crosscut/internal/solver"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Severity to attachment color, the authoritative mapping.
const (
	colorRed    = "#FF0000"
	colorOrange = "#FFA500"
	colorYellow = "#FFD700"
	colorGreen  = "#36A64F"
)

func SeverityColor(s classifier.Severity) string {
	switch s {
	case classifier.SeverityCritical:
		return colorRed
	case classifier.SeverityHigh:
		return colorOrange
	case classifier.SeverityMedium:
		return colorYellow
	default:
		return colorGreen
	}
}

type SlackNotifier struct {
	webhookURL string
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		post:       slack.PostWebhookContext,
	}
}

// Send issues the single webhook POST. No retry; the caller records failures.
func (s *SlackNotifier) Send(ctx context.Context, report aggregator.Report, selected solver.Solution) error {
	msg := BuildWebhookMessage(report, selected)
	if err := s.post(ctx, s.webhookURL, msg); err != nil {
		return err
	}
	log.Info().Msg("Triage summary posted to Slack")
	return nil
}

// BuildWebhookMessage formats the classification and selected solution into
// one attachment colored by aggregated severity.
func BuildWebhookMessage(report aggregator.Report, selected solver.Solution) *slack.WebhookMessage {
	top, _ := aggregator.TopRecord(report)

	fields := []slack.AttachmentField{
		{Title: "Error Type", Value: orFallback(top.Type, "No errors classified"), Short: true},
		{Title: "Severity", Value: report.Severity.String(), Short: true},
		{Title: "Possible Causes", Value: causesText(top), Short: false},
		{Title: "Selected Solution", Value: orFallback(selected.Title, "None"), Short: false},
		{Title: "Solution Description", Value: orFallback(selected.Description, "No description"), Short: false},
		{Title: "Implementation Steps", Value: stepsText(selected.Steps), Short: false},
	}
	if len(report.KeyFindings) > 0 {
		fields = append(fields, slack.AttachmentField{
			Title: "Key Findings",
			Value: bulleted(report.KeyFindings),
			Short: false,
		})
	}

	return &slack.WebhookMessage{
		Attachments: []slack.Attachment{{
			Color:  SeverityColor(report.Severity),
			Title:  "🔍 Log Error Analysis",
			Fields: fields,
			Footer: "crosscut log triage",
			Ts:     json.Number(fmt.Sprintf("%d", time.Now().Unix())),
		}},
	}
}

func causesText(rec classifier.ErrorRecord) string {
	if len(rec.Causes) == 0 {
		return "No causes identified"
	}
	causes := rec.Causes
	if len(causes) > 3 {
		causes = causes[:3]
	}
	return bulleted(causes)
}

func stepsText(steps []string) string {
	if len(steps) == 0 {
		return "No steps provided"
	}
	return bulleted(steps)
}

func bulleted(items []string) string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "• " + item
	}
	return strings.Join(out, "\n")
}

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
