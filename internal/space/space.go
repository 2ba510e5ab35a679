// Package space provides access to the source knowledge base ("space"):
// markdown pages plus attachment files.
package space

import (
	"context"
	"time"
)

// Space lists and reads the pages and attachment files of a knowledge base.
// The publish pipeline consumes it as a read-only snapshot: records are
// fetched once per run and never mutated.
type Space interface {
	// ListPages returns one PageRecord per page in the space.
	// When two entries resolve to the same name, the later entry wins.
	ListPages(ctx context.Context) ([]PageRecord, error)

	// ReadPage returns the raw markdown source of a page.
	// Returns ErrNotFound if the page doesn't exist.
	ReadPage(ctx context.Context, name string) ([]byte, error)

	// ListFiles returns metadata for all attachment files in the space.
	ListFiles(ctx context.Context) ([]FileMeta, error)

	// ReadFile returns the raw bytes of an attachment file.
	// Returns ErrNotFound if the file doesn't exist.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// PageRecord is an immutable snapshot of one page's publish-relevant metadata.
type PageRecord struct {
	// Name is the unique path-like page identifier (no .md extension).
	Name string

	// Tags holds the page's frontmatter tags.
	Tags []string

	// Share holds the page's share markers. A scalar frontmatter value is
	// normalized to a one-element slice at decode time.
	Share []string
}

// FileMeta describes one attachment file.
type FileMeta struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ErrNotFound is returned when a page or file doesn't exist.
type ErrNotFound struct {
	Name string
}

func (e ErrNotFound) Error() string {
	return "not found: " + e.Name
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}

// Catalog builds the name-keyed page catalog from a record listing.
// Later entries for the same name overwrite earlier ones.
func Catalog(records []PageRecord) map[string]PageRecord {
	catalog := make(map[string]PageRecord, len(records))
	for _, rec := range records {
		catalog[rec.Name] = rec
	}
	return catalog
}
