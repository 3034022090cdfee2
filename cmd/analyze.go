package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/crosscut-io/crosscut/internal/config"
	"github.com/crosscut-io/crosscut/internal/ingestor"
	"github.com/crosscut-io/crosscut/internal/llm"
	"github.com/crosscut-io/crosscut/internal/logfile"
	"github.com/crosscut-io/crosscut/internal/notify"
	"github.com/crosscut-io/crosscut/internal/pipeline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	configPath    string
	sendNotify    bool
	jiraTicket    string
	solution      int
	jsonOutput    bool
	datadogQuery  string
	datadogWindow time.Duration
}

func NewAnalyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Triage one or more log files",
		Long: `Analyze scans the given log files (` + strings.Join(logfile.AcceptedExtensions, ", ") + `)
for error signals, classifies what it finds, and prints ranked solutions.
With --datadog-query, recent logs are pulled from Datadog as an extra input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML tuning file")
	cmd.Flags().BoolVar(&flags.sendNotify, "notify", false, "send the result to the configured Slack/JIRA channels")
	cmd.Flags().StringVar(&flags.jiraTicket, "jira-ticket", "", "comment on this existing JIRA ticket instead of creating one")
	cmd.Flags().IntVar(&flags.solution, "solution", 1, "which ranked solution to select (1 = most effective)")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the full result as JSON")
	cmd.Flags().StringVar(&flags.datadogQuery, "datadog-query", "", "also pull matching logs from Datadog")
	cmd.Flags().DurationVar(&flags.datadogWindow, "datadog-window", 15*time.Minute, "trailing window for the Datadog query")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, flags *analyzeFlags) error {
	if len(args) == 0 && flags.datadogQuery == "" {
		return fmt.Errorf("nothing to analyze: pass log files or --datadog-query")
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	files, err := collectFiles(cmd, args, flags, cfg)
	if err != nil {
		return err
	}

	completer, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}
	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		return err
	}

	p := pipeline.New(completer, notifier, cfg.Extractor)

	var spin *spinner.Spinner
	if !flags.jsonOutput {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " Analyzing logs..."
		spin.Start()
	}

	state, runErr := p.Run(cmd.Context(), files, pipeline.Options{
		SendNotifications: flags.sendNotify,
		SolutionIndex:     flags.solution - 1,
		JiraTicket:        flags.jiraTicket,
	})

	if spin != nil {
		spin.Stop()
	}

	if flags.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return err
		}
		return runErr
	}

	if runErr != nil {
		// Stages that completed before the failure still produced output;
		// show what there is before reporting the error.
		if state != nil && state.Report != nil {
			printReport(cmd, state)
		}
		return runErr
	}

	printReport(cmd, state)
	return nil
}

func collectFiles(cmd *cobra.Command, args []string, flags *analyzeFlags, cfg *config.Config) ([]logfile.File, error) {
	var files []logfile.File
	for _, path := range args {
		if !logfile.HasAcceptedExtension(path) {
			return nil, &logfile.InvalidInputError{
				Name:   path,
				Reason: fmt.Sprintf("unsupported extension, accepted: %s", strings.Join(logfile.AcceptedExtensions, ", ")),
			}
		}
		f, err := logfile.Read(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	if flags.datadogQuery != "" {
		if !cfg.Datadog.Enabled() {
			return nil, fmt.Errorf("--datadog-query requires DD_API_KEY and DD_APPLICATION_KEY")
		}
		client := ingestor.NewClient(cfg.Datadog)
		ctx := ingestor.AuthContext(cmd.Context(), cfg.Datadog)
		f, err := ingestor.Fetch(ctx, client, flags.datadogQuery, flags.datadogWindow)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

var severityPrinters = map[string]*color.Color{
	"Critical": color.New(color.FgRed, color.Bold),
	"High":     color.New(color.FgRed),
	"Medium":   color.New(color.FgYellow),
	"Low":      color.New(color.FgGreen),
}

func severityString(s fmt.Stringer) string {
	p, ok := severityPrinters[s.String()]
	if !ok {
		return s.String()
	}
	return p.Sprint(s.String())
}

func printReport(cmd *cobra.Command, state *pipeline.State) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)

	report := state.Report
	if report == nil || report.Empty() {
		fmt.Fprintln(out, "No error signals found.")
		return
	}

	bold.Fprintln(out, "Error Analysis")
	fmt.Fprintf(out, "  Overall severity: %s\n", severityString(report.Severity))
	fmt.Fprintf(out, "  Files scanned: %d, with hits: %d\n\n", report.FilesProcessed, report.FilesWithHits)

	for _, rec := range report.Records {
		fmt.Fprintf(out, "  [%s] %s\n", severityString(rec.Severity), rec.Type)
		if rec.Message != "" {
			fmt.Fprintf(out, "      %s\n", rec.Message)
		}
		for _, c := range rec.Causes {
			fmt.Fprintf(out, "      - %s\n", c)
		}
	}

	if len(report.KeyFindings) > 0 {
		fmt.Fprintln(out)
		bold.Fprintln(out, "Key Findings")
		for _, f := range report.KeyFindings {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}

	if len(state.Solutions) > 0 {
		fmt.Fprintln(out)
		bold.Fprintln(out, "Recommended Solutions")
		for i, s := range state.Solutions {
			marker := " "
			if state.Selected != nil && s.Title == state.Selected.Title {
				marker = color.GreenString("*")
			}
			fmt.Fprintf(out, "%s %d. %s (effectiveness %d%%, complexity %s, ~%s)\n",
				marker, i+1, bold.Sprint(s.Title), s.Effectiveness, s.Complexity, s.TimeEstimate)
			fmt.Fprintf(out, "     %s\n", s.Description)
			for j, step := range s.Steps {
				fmt.Fprintf(out, "     %d) %s\n", j+1, step)
			}
		}
	}

	if state.Notifications != nil {
		fmt.Fprintln(out)
		bold.Fprintln(out, "Notifications")
		printChannel(out, "Slack", state.Notifications.Slack)
		printChannel(out, "JIRA", state.Notifications.Jira)
	}
}

func printChannel(out io.Writer, name string, r notify.DispatchResult) {
	switch {
	case !r.Attempted:
		fmt.Fprintf(out, "  %s: not configured\n", name)
	case r.OK && r.TicketKey != "":
		fmt.Fprintf(out, "  %s: %s (%s)\n", name, color.GreenString("sent"), r.TicketURL)
	case r.OK:
		fmt.Fprintf(out, "  %s: %s\n", name, color.GreenString("sent"))
	default:
		fmt.Fprintf(out, "  %s: %s (%s)\n", name, color.RedString("failed"), r.Error)
	}
}
