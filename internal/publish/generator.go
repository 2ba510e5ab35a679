package publish

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/silverbulletmd/publish/internal/config"
	pkgerrors "github.com/silverbulletmd/publish/internal/errors"
	"github.com/silverbulletmd/publish/internal/markdown"
	"github.com/silverbulletmd/publish/internal/space"
	"github.com/silverbulletmd/publish/internal/util/sets"
)

// Generator materializes published pages under the output root.
// One Generator serves one run; the published set and configuration it holds
// are immutable for the run's duration.
type Generator struct {
	space     space.Space
	out       string
	cfg       config.PublishConfig
	md        *markdown.Markdown
	tpl       *template.Template
	published sets.Set[string]
}

// PageStats counts what one page generation produced.
type PageStats struct {
	AttachmentsCopied  int
	AttachmentsSkipped int
}

// NewGenerator builds a Generator for one run.
func NewGenerator(sp space.Space, outputRoot string, cfg config.PublishConfig, tpl *template.Template, published sets.Set[string], renderOpts markdown.RenderOptions) *Generator {
	renderOpts.Published = published
	renderOpts.RemoveHashtags = cfg.RemoveHashtags
	return &Generator{
		space:     sp,
		out:       outputRoot,
		cfg:       cfg,
		md:        markdown.New(renderOpts),
		tpl:       tpl,
		published: published,
	}
}

// GeneratePage materializes one page's output: markdown mirror, rendered
// HTML, and best-effort copies of referenced attachments.
//
// An unreadable page source is fatal: a page that passed selection must
// exist at generation time. An unreadable attachment is logged and skipped.
func (g *Generator) GeneratePage(ctx context.Context, name, htmlPath, mdPath string) (PageStats, error) {
	var stats PageStats

	source, err := g.space.ReadPage(ctx, name)
	if err != nil {
		return stats, pkgerrors.PageUnreadable(name, err)
	}

	// The frontmatter header carries authoring metadata; it never reaches
	// the published output.
	doc := g.md.Parse(space.StripFrontmatter(source))

	// Render HTML before the transform mutates the tree; the renderer
	// operates on the document as parsed.
	var body bytes.Buffer
	if err := g.md.RenderHTML(&body, doc); err != nil {
		return stats, pkgerrors.RenderError(name, err)
	}

	result, err := Transform(doc, g.published, g.cfg)
	if err != nil {
		return stats, pkgerrors.RenderError(name, err)
	}

	for _, attachment := range result.Attachments {
		copied, copyErr := g.copyAttachment(ctx, attachment)
		if copyErr != nil {
			return stats, copyErr
		}
		if copied {
			stats.AttachmentsCopied++
		} else {
			stats.AttachmentsSkipped++
		}
	}

	if err := writeOutput(mdPath, result.Text); err != nil {
		return stats, err
	}

	html, err := renderShell(g.tpl, TemplateData{
		PageName: name,
		Config:   g.cfg,
		Body:     template.HTML(body.String()), // #nosec G203 - body is renderer output, not user HTML
	})
	if err != nil {
		return stats, pkgerrors.RenderError(name, err)
	}
	if err := writeOutput(htmlPath, html); err != nil {
		return stats, err
	}

	slog.Debug("Page generated", "page", name,
		"attachments", stats.AttachmentsCopied, "skipped", stats.AttachmentsSkipped)
	return stats, nil
}

// copyAttachment copies one attachment from the space to the output root.
// Unreadable attachments degrade gracefully: log, skip, keep going.
// An unwritable output destination is fatal.
func (g *Generator) copyAttachment(ctx context.Context, path string) (bool, error) {
	data, err := g.space.ReadFile(ctx, path)
	if err != nil {
		slog.Warn("Attachment unreadable, skipping", "attachment", path, "error", err)
		return false, nil
	}
	dest := filepath.Join(g.out, filepath.FromSlash(path))
	if err := writeOutput(dest, data); err != nil {
		return false, err
	}
	return true, nil
}

// HTMLPath returns the output path of a page's rendered HTML.
func HTMLPath(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name), "index.html")
}

// MarkdownPath returns the output path of a page's markdown mirror.
func MarkdownPath(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name)+".md")
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return pkgerrors.OutputWriteError(path, fmt.Errorf("create directory: %w", err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - published artifacts are world-readable
		return pkgerrors.OutputWriteError(path, err)
	}
	return nil
}
