package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/crosscut-io/crosscut/internal/aggregator"
	"github.com/crosscut-io/crosscut/internal/classifier"
	"github.com/crosscut-io/crosscut/internal/solver"
	"github.com/rs/zerolog/log"
)

const defaultIssueType = "Task"

// Severity to JIRA priority, the authoritative mapping.
func SeverityPriority(s classifier.Severity) string {
	switch s {
	case classifier.SeverityCritical:
		return "Highest"
	case classifier.SeverityHigh:
		return "High"
	case classifier.SeverityLow:
		return "Low"
	default:
		return "Medium"
	}
}

// jiraAPI is the slice of the JIRA client the notifier needs.
type jiraAPI interface {
	CreateIssue(ctx context.Context, summary, description, issueType, priority string) (key, url string, err error)
	AddComment(ctx context.Context, ticketKey, body string) error
}

type JiraNotifier struct {
	cfg JiraConfig
	api jiraAPI
}

func NewJiraNotifier(cfg JiraConfig) (*JiraNotifier, error) {
	if cfg.IssueType == "" {
		cfg.IssueType = defaultIssueType
	}
	tp := jira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.APIToken,
	}
	client, err := jira.NewClient(tp.Client(), cfg.Server)
	if err != nil {
		return nil, err
	}
	return &JiraNotifier{
		cfg: cfg,
		api: &jiraClient{client: client, server: cfg.Server, projectKey: cfg.ProjectKey},
	}, nil
}

// CreateOrComment creates a new ticket, or appends a comment when an existing
// ticket key is supplied.
func (j *JiraNotifier) CreateOrComment(ctx context.Context, report aggregator.Report, selected solver.Solution, ticketKey string) (string, string, error) {
	if ticketKey != "" {
		body := commentBody(report, selected)
		if err := j.api.AddComment(ctx, ticketKey, body); err != nil {
			return "", "", err
		}
		log.Info().Str("ticket", ticketKey).Msg("Comment added to JIRA ticket")
		return ticketKey, "", nil
	}

	top, _ := aggregator.TopRecord(report)
	summary := fmt.Sprintf("[Log Error] %s - %s", orFallback(top.Type, "Log analysis"), report.Severity)
	description := issueDescription(report, selected)
	priority := SeverityPriority(report.Severity)

	key, url, err := j.api.CreateIssue(ctx, summary, description, j.cfg.IssueType, priority)
	if err != nil {
		return "", "", err
	}
	log.Info().Str("ticket", key).Msg("JIRA ticket created")
	return key, url, nil
}

// issueDescription renders JIRA wiki markup.
func issueDescription(report aggregator.Report, selected solver.Solution) string {
	var sb strings.Builder
	top, _ := aggregator.TopRecord(report)

	sb.WriteString("h2. Error Analysis Summary\n\n")
	fmt.Fprintf(&sb, "*Error Type:* %s\n", orFallback(top.Type, "Unknown"))
	fmt.Fprintf(&sb, "*Severity:* %s\n\n", report.Severity)

	if len(top.Causes) > 0 {
		sb.WriteString("h2. Possible Causes\n\n")
		for i, cause := range top.Causes {
			fmt.Fprintf(&sb, "h3. Cause %d\n%s\n\n", i+1, cause)
		}
	}

	fmt.Fprintf(&sb, "h2. Selected Solution: %s\n\n%s\n\n", orFallback(selected.Title, "Unknown"), selected.Description)
	if len(selected.Steps) > 0 {
		sb.WriteString("h3. Implementation Steps:\n")
		for _, step := range selected.Steps {
			fmt.Fprintf(&sb, "# %s\n", step)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "*Estimated time:* %s | *Complexity:* %s | *Risk:* %s\n\n",
		selected.TimeEstimate, selected.Complexity, selected.Risk)

	if len(report.KeyFindings) > 0 {
		sb.WriteString("h2. Key Findings\n\n")
		for _, finding := range report.KeyFindings {
			fmt.Fprintf(&sb, "* %s\n", finding)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "----\n_Generated by crosscut on %s_\n", time.Now().Format("2006-01-02 15:04:05"))
	return sb.String()
}

func commentBody(report aggregator.Report, selected solver.Solution) string {
	var sb strings.Builder
	top, _ := aggregator.TopRecord(report)
	fmt.Fprintf(&sb, "New triage run: *%s* (severity %s)\n\n", orFallback(top.Type, "no errors classified"), report.Severity)
	fmt.Fprintf(&sb, "Recommended: %s — %s\n", orFallback(selected.Title, "n/a"), selected.Description)
	if len(selected.Steps) > 0 {
		sb.WriteString("Steps:\n")
		for _, step := range selected.Steps {
			fmt.Fprintf(&sb, "# %s\n", step)
		}
	}
	return sb.String()
}

// jiraClient adapts the go-jira SDK to the narrow jiraAPI surface.
type jiraClient struct {
	client     *jira.Client
	server     string
	projectKey string
}

func (c *jiraClient) CreateIssue(ctx context.Context, summary, description, issueType, priority string) (string, string, error) {
	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: c.projectKey},
			Type:        jira.IssueType{Name: issueType},
			Summary:     summary,
			Description: description,
			Priority:    &jira.Priority{Name: priority},
		},
	}
	created, _, err := c.client.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		return "", "", err
	}
	url := strings.TrimSuffix(c.server, "/") + "/browse/" + created.Key
	return created.Key, url, nil
}

func (c *jiraClient) AddComment(ctx context.Context, ticketKey, body string) error {
	_, _, err := c.client.Issue.AddCommentWithContext(ctx, ticketKey, &jira.Comment{Body: body})
	return err
}
