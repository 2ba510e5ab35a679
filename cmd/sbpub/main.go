package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/silverbulletmd/publish/internal/daemon"
	"github.com/silverbulletmd/publish/internal/eventstore"
	"github.com/silverbulletmd/publish/internal/gitout"
	"github.com/silverbulletmd/publish/internal/linkcheck"
	"github.com/silverbulletmd/publish/internal/metrics"
	"github.com/silverbulletmd/publish/internal/notify"
	"github.com/silverbulletmd/publish/internal/publish"
	"github.com/silverbulletmd/publish/internal/space"
	"github.com/silverbulletmd/publish/internal/version"
)

var CLI struct {
	Space   string `short:"s" help:"Space directory (the knowledge base root)" default:"." env:"SBPUB_SPACE"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Publish struct {
		Output      string `short:"o" help:"Output directory for the generated site" default:"./public" env:"SBPUB_OUTPUT"`
		GitCommit   bool   `help:"Commit the output directory after a successful run"`
		NatsURL     string `help:"Publish run events to this NATS server" env:"SBPUB_NATS_URL"`
		NatsSubject string `help:"NATS subject for run events" default:"sbpub.runs" env:"SBPUB_NATS_SUBJECT"`
		HistoryDB   string `help:"Record run history in this SQLite database" env:"SBPUB_HISTORY_DB"`
	} `cmd:"" help:"Publish the space once"`

	Daemon struct {
		Output      string        `short:"o" help:"Output directory for the generated site" default:"./public" env:"SBPUB_OUTPUT"`
		Interval    time.Duration `help:"Additionally republish on this interval (0 disables)"`
		Debounce    time.Duration `help:"Debounce window for file change bursts" default:"2s"`
		MetricsAddr string        `help:"Serve prometheus metrics on this address" default:":9090"`
		GitCommit   bool          `help:"Commit the output directory after each successful run"`
		NatsURL     string        `help:"Publish run events to this NATS server" env:"SBPUB_NATS_URL"`
		NatsSubject string        `help:"NATS subject for run events" default:"sbpub.runs" env:"SBPUB_NATS_SUBJECT"`
		HistoryDB   string        `help:"Record run history in this SQLite database" env:"SBPUB_HISTORY_DB"`
	} `cmd:"" help:"Watch the space and republish on change"`

	Verify struct {
		Output string `short:"o" help:"Output directory to verify" default:"./public"`
	} `cmd:"" help:"Check the generated site for broken relative links"`

	History struct {
		HistoryDB string `help:"Run history SQLite database" env:"SBPUB_HISTORY_DB" required:""`
		Limit     int    `help:"Number of runs to show" default:"20"`
	} `cmd:"" help:"Show recent publish runs"`

	Init struct {
		Force bool `help:"Overwrite an existing PUBLISH page"`
	} `cmd:"" help:"Create a PUBLISH configuration page in the space"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	// A .env next to the binary keeps NATS/history settings out of flags.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "publish":
		err = runPublish()
	case "daemon":
		err = runDaemon()
	case "verify":
		err = runVerify()
	case "history":
		err = runHistory()
	case "init":
		err = runInit()
	case "version":
		fmt.Printf("sbpub %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// buildPipeline assembles a pipeline plus the notifier/history plumbing
// shared by the publish and daemon commands.
func buildPipeline(output string, gitCommit bool, natsURL, natsSubject, historyDB string, recorder metrics.Recorder) (func(ctx context.Context) error, func(), error) {
	sp, err := space.NewFSSpace(CLI.Space)
	if err != nil {
		return nil, nil, err
	}

	notifiers := []notify.Notifier{notify.NewLogNotifier()}
	if natsURL != "" {
		natsNotifier, natsErr := notify.NewNATSNotifier(natsURL, natsSubject)
		if natsErr != nil {
			return nil, nil, natsErr
		}
		notifiers = append(notifiers, natsNotifier)
	}
	notifier := notify.NewMulti(notifiers...)

	var history *eventstore.SQLiteStore
	if historyDB != "" {
		history, err = eventstore.Open(historyDB)
		if err != nil {
			_ = notifier.Close()
			return nil, nil, err
		}
	}

	opts := publish.Options{
		Space:      sp,
		OutputRoot: output,
		Notifier:   notifier,
		Metrics:    recorder,
	}
	if gitCommit {
		opts.Committer = gitout.NewCommitter(output)
	}
	pipeline, err := publish.New(opts)
	if err != nil {
		_ = notifier.Close()
		if history != nil {
			_ = history.Close()
		}
		return nil, nil, err
	}

	run := func(ctx context.Context) error {
		report, runErr := pipeline.Run(ctx)
		if history != nil {
			record := eventstore.RunRecord{
				ID:          report.RunID,
				StartedAt:   report.Started,
				FinishedAt:  report.Finished,
				Pages:       report.Pages,
				Attachments: report.Attachments,
				Status:      report.Status,
			}
			if runErr != nil {
				record.Error = runErr.Error()
			}
			if histErr := history.RecordRun(ctx, record); histErr != nil {
				slog.Warn("Failed to record run history", "error", histErr)
			}
		}
		return runErr
	}

	cleanup := func() {
		if err := notifier.Close(); err != nil {
			slog.Warn("Notifier close failed", "error", err)
		}
		if history != nil {
			if err := history.Close(); err != nil {
				slog.Warn("History close failed", "error", err)
			}
		}
	}
	return run, cleanup, nil
}

func runPublish() error {
	c := CLI.Publish
	run, cleanup, err := buildPipeline(c.Output, c.GitCommit, c.NatsURL, c.NatsSubject, c.HistoryDB, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer cleanup()
	return run(context.Background())
}

func runDaemon() error {
	c := CLI.Daemon
	recorder := metrics.NewPromRecorder()
	run, cleanup, err := buildPipeline(c.Output, c.GitCommit, c.NatsURL, c.NatsSubject, c.HistoryDB, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	d, err := daemon.New(daemon.Options{
		SpaceDir:       CLI.Space,
		Interval:       c.Interval,
		Debounce:       c.Debounce,
		MetricsAddr:    c.MetricsAddr,
		MetricsHandler: recorder.Handler(),
		Run:            run,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

func runVerify() error {
	issues, err := linkcheck.VerifyOutput(CLI.Verify.Output)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		slog.Info("Output verified, no broken references")
		return nil
	}
	for _, issue := range issues {
		fmt.Println(issue)
	}
	return fmt.Errorf("%d broken references", len(issues))
}

func runHistory() error {
	store, err := eventstore.Open(CLI.History.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %s  pages=%d attachments=%d  %s",
			run.StartedAt.Format(time.RFC3339), run.Status, run.Pages, run.Attachments, run.ID)
		if run.Error != "" {
			line += "  error=" + run.Error
		}
		fmt.Println(line)
	}
	return nil
}

const initialConfigPage = `This page configures publishing for this space.

` + "```yaml" + `
title: My Site
# indexPage: index
removeHashtags: true
publishAll: false
tags: []
prefixes: []
generateIndexJson: true
` + "```" + `
`

func runInit() error {
	path := CLI.Space + "/PUBLISH.md"
	if _, err := os.Stat(path); err == nil && !CLI.Init.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(initialConfigPage), 0o644); err != nil { // #nosec G306
		return err
	}
	slog.Info("Created publish configuration page", "path", path)
	return nil
}
