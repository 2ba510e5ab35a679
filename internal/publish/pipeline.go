// Package publish implements the publish pipeline: selection, transform,
// generation, and the run driver.
package publish

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/silverbulletmd/publish/internal/config"
	"github.com/silverbulletmd/publish/internal/manifest"
	"github.com/silverbulletmd/publish/internal/markdown"
	"github.com/silverbulletmd/publish/internal/metrics"
	"github.com/silverbulletmd/publish/internal/notify"
	"github.com/silverbulletmd/publish/internal/space"
	"github.com/silverbulletmd/publish/internal/util/sets"
)

// StageName is a strongly-typed identifier for a pipeline stage. All
// canonical stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in execution order.
const (
	StageLoadConfig    StageName = "load_config"
	StageListPages     StageName = "list_pages"
	StageCleanOutput   StageName = "clean_output"
	StageSelectPages   StageName = "select_pages"
	StageLoadTemplate  StageName = "load_template"
	StageGeneratePages StageName = "generate_pages"
	StageGenerateIndex StageName = "generate_index"
	StageBuildManifest StageName = "build_manifest"
	StageCommitOutput  StageName = "commit_output"
)

// Stage is a discrete unit of work in the publish run.
type Stage func(ctx context.Context, st *RunState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err)
}
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// Committer commits the output root after a successful run (optional).
type Committer interface {
	Commit(ctx context.Context, message string) error
}

// Options wires a Pipeline.
type Options struct {
	Space      space.Space
	OutputRoot string

	// PagePrefix and AttachmentPrefix control URL resolution in rendered
	// HTML; both default to "/".
	PagePrefix       string
	AttachmentPrefix string
	HardBreaks       bool

	Notifier  notify.Notifier  // nil means no notifications
	Metrics   metrics.Recorder // nil means no metrics
	Committer Committer        // nil means no output commit
}

// RunState carries mutable state across stages of one run.
type RunState struct {
	RunID     string
	Config    config.PublishConfig
	Catalog   map[string]space.PageRecord
	Published sets.Set[string]
	Template  *template.Template
	Generator *Generator
	Report    *RunReport
}

// RunReport summarizes one publish run.
type RunReport struct {
	RunID          string
	Pages          int
	Attachments    int
	Started        time.Time
	Finished       time.Time
	Status         string
	StageDurations map[StageName]time.Duration
	Warnings       []error
}

// Duration returns the wall-clock run duration.
func (r *RunReport) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Pipeline drives a full publish run through its stages.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline. OutputRoot and Space are required.
func New(opts Options) (*Pipeline, error) {
	if opts.Space == nil {
		return nil, fmt.Errorf("pipeline requires a space")
	}
	if opts.OutputRoot == "" {
		return nil, fmt.Errorf("pipeline requires an output root")
	}
	if opts.PagePrefix == "" {
		opts.PagePrefix = "/"
	}
	if opts.AttachmentPrefix == "" {
		opts.AttachmentPrefix = "/"
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewNoopNotifier()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	return &Pipeline{opts: opts}, nil
}

// stageDef pairs a stage name with its executing function.
type stageDef struct {
	name StageName
	fn   Stage
}

// Run executes the pipeline once. The stages run strictly sequentially with
// no branching back; the first fatal error aborts the run, leaving the
// output root in whatever partial state existed at failure.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:          uuid.NewString(),
		Started:        time.Now(),
		Status:         "running",
		StageDurations: make(map[StageName]time.Duration),
	}
	st := &RunState{RunID: report.RunID, Report: report}

	p.opts.Notifier.RunStarted(ctx, notify.RunEvent{
		RunID:      report.RunID,
		OutputRoot: p.opts.OutputRoot,
		Status:     "started",
		Timestamp:  report.Started,
	})

	stages := []stageDef{
		{StageLoadConfig, p.stageLoadConfig},
		{StageListPages, p.stageListPages},
		{StageCleanOutput, p.stageCleanOutput},
		{StageSelectPages, p.stageSelectPages},
		{StageLoadTemplate, p.stageLoadTemplate},
		{StageGeneratePages, p.stageGeneratePages},
		{StageGenerateIndex, p.stageGenerateIndex},
		{StageBuildManifest, p.stageBuildManifest},
		{StageCommitOutput, p.stageCommitOutput},
	}

	err := p.runStages(ctx, st, stages)
	report.Finished = time.Now()
	if err != nil {
		report.Status = metrics.ResultFailed
	} else {
		report.Status = metrics.ResultSuccess
	}

	p.opts.Metrics.RecordRun(report.Status, report.Duration())
	p.opts.Metrics.RecordPages(report.Pages)
	p.opts.Metrics.RecordAttachments(report.Attachments)

	event := notify.RunEvent{
		RunID:       report.RunID,
		OutputRoot:  p.opts.OutputRoot,
		Pages:       report.Pages,
		Attachments: report.Attachments,
		Status:      report.Status,
		Timestamp:   report.Finished,
		DurationMS:  report.Duration().Milliseconds(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	p.opts.Notifier.RunFinished(ctx, event)

	return report, err
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are recorded and skipped over.
func (p *Pipeline) runStages(ctx context.Context, st *RunState, stages []stageDef) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(stage.name, ctx.Err())
		default:
		}
		t0 := time.Now()
		err := stage.fn(ctx, st)
		st.Report.StageDurations[stage.name] = time.Since(t0)
		if err == nil {
			continue
		}
		var se *StageError
		if !errors.As(err, &se) {
			// Unknown errors are fatal by default.
			se = newFatalStageError(stage.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			slog.Warn("Stage completed with warning", "stage", stage.name, "error", se.Err)
			st.Report.Warnings = append(st.Report.Warnings, se)
			continue
		default:
			return se
		}
	}
	return nil
}

func (p *Pipeline) stageLoadConfig(ctx context.Context, st *RunState) error {
	st.Config = config.Resolve(ctx, p.opts.Space)
	return nil
}

func (p *Pipeline) stageListPages(ctx context.Context, st *RunState) error {
	records, err := p.opts.Space.ListPages(ctx)
	if err != nil {
		return newFatalStageError(StageListPages, err)
	}
	st.Catalog = space.Catalog(records)
	slog.Debug("Catalog listed", "pages", len(st.Catalog))
	return nil
}

// stageCleanOutput deletes every prior output artifact so the run is
// idempotent with respect to stale files from renamed or unpublished pages.
// Cleanup completes before any new write begins.
func (p *Pipeline) stageCleanOutput(ctx context.Context, st *RunState) error {
	entries, err := os.ReadDir(p.opts.OutputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(p.opts.OutputRoot, 0o750); mkErr != nil {
				return newFatalStageError(StageCleanOutput, mkErr)
			}
			return nil
		}
		return newFatalStageError(StageCleanOutput, err)
	}
	for _, entry := range entries {
		// A .git directory survives cleanup so commit-on-publish keeps
		// its history across runs.
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(p.opts.OutputRoot, entry.Name())); err != nil {
			return newFatalStageError(StageCleanOutput, err)
		}
	}
	return nil
}

func (p *Pipeline) stageSelectPages(ctx context.Context, st *RunState) error {
	st.Published = SelectPages(st.Catalog, st.Config)
	slog.Info("Pages selected for publication",
		"selected", st.Published.Len(), "catalog", len(st.Catalog))
	return nil
}

func (p *Pipeline) stageLoadTemplate(ctx context.Context, st *RunState) error {
	tpl, err := LoadTemplate(ctx, p.opts.Space, st.Config)
	if err != nil {
		return newFatalStageError(StageLoadTemplate, err)
	}
	st.Template = tpl
	st.Generator = NewGenerator(p.opts.Space, p.opts.OutputRoot, st.Config, tpl, st.Published,
		markdown.RenderOptions{
			PagePrefix:       p.opts.PagePrefix,
			AttachmentPrefix: p.opts.AttachmentPrefix,
			HardBreaks:       p.opts.HardBreaks,
		})
	return nil
}

func (p *Pipeline) stageGeneratePages(ctx context.Context, st *RunState) error {
	for _, name := range sets.SortedStrings(st.Published) {
		if ctx.Err() != nil {
			return newCanceledStageError(StageGeneratePages, ctx.Err())
		}
		stats, err := st.Generator.GeneratePage(ctx, name,
			HTMLPath(p.opts.OutputRoot, name),
			MarkdownPath(p.opts.OutputRoot, name))
		if err != nil {
			return newFatalStageError(StageGeneratePages, err)
		}
		st.Report.Pages++
		st.Report.Attachments += stats.AttachmentsCopied
	}
	return nil
}

// stageGenerateIndex generates the configured index page at the output
// root. It uses the same published set as the link-validity oracle; the
// index page itself need not be a member.
func (p *Pipeline) stageGenerateIndex(ctx context.Context, st *RunState) error {
	if st.Config.IndexPage == "" {
		return nil
	}
	stats, err := st.Generator.GeneratePage(ctx, st.Config.IndexPage,
		filepath.Join(p.opts.OutputRoot, "index.html"),
		filepath.Join(p.opts.OutputRoot, "index.md"))
	if err != nil {
		return newFatalStageError(StageGenerateIndex, err)
	}
	st.Report.Pages++
	st.Report.Attachments += stats.AttachmentsCopied
	return nil
}

func (p *Pipeline) stageBuildManifest(ctx context.Context, st *RunState) error {
	if !st.Config.GenerateIndexJSON {
		return nil
	}
	artifacts, err := manifest.Build(p.opts.OutputRoot)
	if err != nil {
		return newFatalStageError(StageBuildManifest, err)
	}
	if err := manifest.Write(p.opts.OutputRoot, artifacts); err != nil {
		return newFatalStageError(StageBuildManifest, err)
	}
	slog.Debug("Manifest written", "artifacts", len(artifacts))
	return nil
}

// stageCommitOutput commits the output root when a committer is configured.
// Commit failures degrade to a warning: the site itself was generated.
func (p *Pipeline) stageCommitOutput(ctx context.Context, st *RunState) error {
	if p.opts.Committer == nil {
		return nil
	}
	message := fmt.Sprintf("publish %s (%d pages)", st.RunID, st.Report.Pages)
	if err := p.opts.Committer.Commit(ctx, message); err != nil {
		return newWarnStageError(StageCommitOutput, err)
	}
	return nil
}
