// Package daemon runs the publisher continuously: it republishes when the
// space changes on disk and, optionally, on a fixed schedule.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
)

// Options configures a Daemon.
type Options struct {
	// SpaceDir is the directory watched for changes.
	SpaceDir string

	// Interval triggers an additional scheduled republish; zero disables it.
	Interval time.Duration

	// Debounce coalesces rapid file change bursts; defaults to 2s.
	Debounce time.Duration

	// MetricsAddr serves MetricsHandler at /metrics when non-empty.
	MetricsAddr    string
	MetricsHandler http.Handler

	// Run executes one full publish. Each trigger reruns the whole
	// pipeline; there is no incremental mode.
	Run func(ctx context.Context) error
}

// Daemon watches the space and republishes on change.
type Daemon struct {
	opts    Options
	watcher *fsnotify.Watcher
	trigger chan struct{}
}

// New creates a daemon. Options.Run and Options.SpaceDir are required.
func New(opts Options) (*Daemon, error) {
	if opts.Run == nil {
		return nil, fmt.Errorf("daemon requires a run function")
	}
	if opts.SpaceDir == "" {
		return nil, fmt.Errorf("daemon requires a space directory")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Daemon{
		opts:    opts,
		watcher: watcher,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Run blocks until the context is canceled. It publishes once at startup,
// then on every debounced space change and every schedule tick.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.watcher.Close()

	if err := d.watchTree(d.opts.SpaceDir); err != nil {
		return err
	}
	slog.Info("Watching space", "dir", d.opts.SpaceDir, "debounce", d.opts.Debounce)

	var scheduler gocron.Scheduler
	if d.opts.Interval > 0 {
		var err error
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(d.opts.Interval),
			gocron.NewTask(d.fire),
			gocron.WithName("scheduled-publish"),
		)
		if err != nil {
			return fmt.Errorf("create scheduled publish job: %w", err)
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", "error", err)
			}
		}()
		slog.Info("Scheduled republish enabled", "interval", d.opts.Interval)
	}

	if d.opts.MetricsAddr != "" && d.opts.MetricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.opts.MetricsHandler)
		server := &http.Server{
			Addr:              d.opts.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		slog.Info("Metrics server listening", "addr", d.opts.MetricsAddr)
	}

	go d.watchLoop(ctx)

	// Initial publish so the output reflects the space at startup.
	d.publish(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.trigger:
			d.publish(ctx)
		}
	}
}

func (d *Daemon) publish(ctx context.Context) {
	if err := d.opts.Run(ctx); err != nil {
		slog.Error("Publish run failed", "error", err)
	}
}

// fire requests a publish, coalescing with any pending trigger.
func (d *Daemon) fire() {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// watchTree adds the directory and all its subdirectories to the watcher.
// fsnotify is not recursive.
func (d *Daemon) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := d.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// watchLoop debounces filesystem events into publish triggers.
func (d *Daemon) watchLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := d.watchTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			if timer == nil {
				timer = time.AfterFunc(d.opts.Debounce, d.fire)
			} else {
				timer.Reset(d.opts.Debounce)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}
