// Package gitout commits the generated site to a git repository at the
// output root. This is an export convenience, not output versioning by the
// pipeline: every run still regenerates the full site.
package gitout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Committer stages and commits everything under dir.
type Committer struct {
	dir string
}

// NewCommitter returns a committer for the given output root.
func NewCommitter(dir string) *Committer {
	return &Committer{dir: dir}
}

// Commit opens (or initializes) the repository at the output root, stages
// all changes, and commits them. A run that changed nothing is a no-op.
func (c *Committer) Commit(ctx context.Context, message string) error {
	repo, err := git.PlainOpen(c.dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(c.dir, false)
	}
	if err != nil {
		return fmt.Errorf("open output repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage output: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if status.IsClean() {
		slog.Debug("Output unchanged, skipping commit")
		return nil
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "publisher",
			Email: "publisher@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit output: %w", err)
	}
	slog.Info("Output committed", "commit", hash.String())
	return nil
}
