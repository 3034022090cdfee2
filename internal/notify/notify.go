// Package notify dispatches triage results to Slack and JIRA. Both channels
// are optional and independent; failures are collected, never raised, so the
// classification and solution output survives a notification outage.
package notify

import (
	"context"
	"fmt"

	"github.com/crosscut-io/crosscut/internal/aggregator"
	"github.com/crosscut-io/crosscut/internal/solver"
	"github.com/rs/zerolog/log"
)

// NotificationError reports a failed dispatch to one channel.
type NotificationError struct {
	Stage string // "slack" or "jira"
	Err   error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Stage, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// DispatchResult records the outcome for one channel.
type DispatchResult struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	TicketKey string `json:"ticket_key,omitempty"`
	TicketURL string `json:"ticket_url,omitempty"`
}

// Status collects the per-channel outcomes of one dispatch.
type Status struct {
	Slack DispatchResult `json:"slack"`
	Jira  DispatchResult `json:"jira"`
}

// AllOK reports whether every attempted channel succeeded.
func (s Status) AllOK() bool {
	if s.Slack.Attempted && !s.Slack.OK {
		return false
	}
	if s.Jira.Attempted && !s.Jira.OK {
		return false
	}
	return true
}

// Config enables channels by presence: an empty webhook URL disables Slack,
// an incomplete JIRA block disables JIRA.
type Config struct {
	SlackWebhookURL string
	Jira            JiraConfig
}

type JiraConfig struct {
	Server     string
	Email      string
	APIToken   string
	ProjectKey string
	IssueType  string
}

// Enabled reports whether the required JIRA fields are all present.
func (c JiraConfig) Enabled() bool {
	return c.Server != "" && c.Email != "" && c.APIToken != "" && c.ProjectKey != ""
}

// Dispatcher fans a result out to the configured channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, report aggregator.Report, selected solver.Solution, ticketKey string) Status
}

type Notifier struct {
	slack *SlackNotifier
	jira  *JiraNotifier
}

// New wires up the channels the config enables.
func New(cfg Config) (*Notifier, error) {
	n := &Notifier{}
	if cfg.SlackWebhookURL != "" {
		n.slack = NewSlackNotifier(cfg.SlackWebhookURL)
	}
	if cfg.Jira.Enabled() {
		jn, err := NewJiraNotifier(cfg.Jira)
		if err != nil {
			return nil, fmt.Errorf("jira notifier: %w", err)
		}
		n.jira = jn
	}
	return n, nil
}

// Dispatch sends to Slack and JIRA in turn. A ticketKey switches JIRA from
// creating an issue to commenting on the existing one. A failure in one
// channel never blocks the other.
func (n *Notifier) Dispatch(ctx context.Context, report aggregator.Report, selected solver.Solution, ticketKey string) Status {
	var status Status

	if n.slack != nil {
		status.Slack.Attempted = true
		if err := n.slack.Send(ctx, report, selected); err != nil {
			nerr := &NotificationError{Stage: "slack", Err: err}
			log.Err(nerr).Msg("Slack dispatch failed")
			status.Slack.Error = nerr.Error()
		} else {
			status.Slack.OK = true
		}
	}

	if n.jira != nil {
		status.Jira.Attempted = true
		key, url, err := n.jira.CreateOrComment(ctx, report, selected, ticketKey)
		if err != nil {
			nerr := &NotificationError{Stage: "jira", Err: err}
			log.Err(nerr).Msg("JIRA dispatch failed")
			status.Jira.Error = nerr.Error()
		} else {
			status.Jira.OK = true
			status.Jira.TicketKey = key
			status.Jira.TicketURL = url
		}
	}

	return status
}
