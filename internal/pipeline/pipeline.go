// Package pipeline sequences extraction, classification, aggregation,
// solution finding, and notification for one triage run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/crosscut-io/crosscut/internal/aggregator"
	"github.com/crosscut-io/crosscut/internal/classifier"
	"github.com/crosscut-io/crosscut/internal/extractor"
	"github.com/crosscut-io/crosscut/internal/llm"
	"github.com/crosscut-io/crosscut/internal/logfile"
	"github.com/crosscut-io/crosscut/internal/notify"
	"github.com/crosscut-io/crosscut/internal/solver"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Step names the pipeline states.
type Step string

const (
	StepExtracting      Step = "extracting"
	StepClassifying     Step = "classifying"
	StepAggregating     Step = "aggregating"
	StepSolutionFinding Step = "solution_finding"
	StepNotifying       Step = "notifying"
	StepDone            Step = "done"
	StepFailed          Step = "failed"
)

// StageError names the stage a run failed in. The partial State is returned
// alongside it so results computed before the failure stay usable.
type StageError struct {
	Step Step
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline failed in %s: %v", e.Step, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// State is the accumulator for one run. It is owned by exactly one run;
// concurrent runs must use independent instances.
type State struct {
	Files         []logfile.File          `json:"-"`
	Excerpts      []extractor.Excerpt     `json:"-"`
	FileReports   []classifier.FileReport `json:"file_reports,omitempty"`
	Report        *aggregator.Report      `json:"report,omitempty"`
	Solutions     []solver.Solution       `json:"solutions,omitempty"`
	Selected      *solver.Solution        `json:"selected_solution,omitempty"`
	Notifications *notify.Status          `json:"notification_status,omitempty"`
	Step          Step                    `json:"step"`
}

// Options gate the optional tail of the pipeline.
type Options struct {
	SendNotifications bool
	SolutionIndex     int    // which ranked solution to dispatch, 0 = top
	JiraTicket        string // existing ticket to comment on instead of creating one
}

const defaultClassifyConcurrency = 4

type Pipeline struct {
	extractorCfg extractor.Config
	classifier   *classifier.Classifier
	solver       *solver.Finder
	notifier     notify.Dispatcher
	concurrency  int
}

func New(completer llm.Completer, notifier notify.Dispatcher, exCfg extractor.Config) *Pipeline {
	return &Pipeline{
		extractorCfg: exCfg,
		classifier:   classifier.New(completer),
		solver:       solver.New(completer),
		notifier:     notifier,
		concurrency:  defaultClassifyConcurrency,
	}
}

// Run drives one triage run to Done or Failed. On failure the partial state is
// returned together with a StageError naming the stage.
func (p *Pipeline) Run(ctx context.Context, files []logfile.File, opts Options) (*State, error) {
	state := &State{Files: files}

	// Extracting
	state.Step = StepExtracting
	for _, f := range files {
		ex, err := extractor.Extract(f, p.extractorCfg)
		if err != nil {
			return fail(state, err)
		}
		state.Excerpts = append(state.Excerpts, ex)
	}
	log.Info().Int("files", len(files)).Msg("Extraction complete")

	// Classifying: per-file calls share no mutable state, so they fan out;
	// aggregation below is the join point.
	state.Step = StepClassifying
	reports := make([]classifier.FileReport, len(state.Excerpts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, ex := range state.Excerpts {
		g.Go(func() error {
			report, err := p.classifier.ClassifyFile(gctx, ex)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(state, err)
	}
	state.FileReports = reports

	// Aggregating
	state.Step = StepAggregating
	report := aggregator.Aggregate(reports)
	state.Report = &report
	log.Info().
		Int("records", len(report.Records)).
		Str("severity", report.Severity.String()).
		Msg("Aggregation complete")

	if report.Empty() {
		log.Info().Msg("No errors classified, nothing to solve")
		state.Step = StepDone
		return state, nil
	}

	// SolutionFinding
	state.Step = StepSolutionFinding
	solutions, err := p.solver.Find(ctx, report)
	if err != nil {
		return fail(state, err)
	}
	state.Solutions = solutions
	state.Selected = &solutions[clampIndex(opts.SolutionIndex, len(solutions))]

	// Notifying, gated entirely by the option.
	if opts.SendNotifications && p.notifier != nil {
		state.Step = StepNotifying
		status := p.notifier.Dispatch(ctx, report, *state.Selected, opts.JiraTicket)
		state.Notifications = &status
	}

	state.Step = StepDone
	return state, nil
}

func fail(state *State, err error) (*State, error) {
	stage := state.Step
	state.Step = StepFailed
	log.Err(err).Str("stage", string(stage)).Msg("Pipeline stage failed")
	return state, &StageError{Step: stage, Err: err}
}

func clampIndex(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}
