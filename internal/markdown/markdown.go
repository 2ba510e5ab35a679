// Package markdown wraps goldmark with the wiki constructs the publisher
// understands (wiki links, hashtags) and the tree-rewrite machinery the
// document transformer is built on.
package markdown

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Document pairs a parsed tree with the source it was parsed from.
// Owned by one page generation; never shared across pages.
type Document struct {
	Root   gmast.Node
	Source []byte
}

// Markdown is a configured parser/renderer pair. Build one per publish run;
// the render options (published set, URL prefixes) are fixed for the run.
type Markdown struct {
	gm goldmark.Markdown
}

// New creates a Markdown instance with the wiki extensions and the given
// render options.
func New(opts RenderOptions) *Markdown {
	rendererOptions := []renderer.Option{
		renderer.WithNodeRenderers(
			util.Prioritized(newNodeRenderer(opts), 100),
		),
	}
	if opts.HardBreaks {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	gm := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithInlineParsers(
				util.Prioritized(&wikiLinkParser{}, 150),
				util.Prioritized(&hashtagParser{}, 999),
			),
		),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Markdown{gm: gm}
}

// Parse parses markdown source into a document tree.
func (m *Markdown) Parse(source []byte) *Document {
	root := m.gm.Parser().Parse(text.NewReader(source))
	return &Document{Root: root, Source: source}
}

// RenderHTML renders the document tree to HTML.
func (m *Markdown) RenderHTML(w io.Writer, doc *Document) error {
	return m.gm.Renderer().Render(w, doc.Source, doc.Root)
}

// isCommentHTML reports whether raw HTML content is an annotation comment.
func isCommentHTML(content []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(content), []byte("<!--"))
}

// IsComment reports whether the node is an authoring-only annotation:
// a block or inline HTML comment.
func IsComment(n gmast.Node, source []byte) bool {
	switch node := n.(type) {
	case *gmast.HTMLBlock:
		if node.Lines().Len() == 0 {
			return false
		}
		first := node.Lines().At(0)
		return isCommentHTML(first.Value(source))
	case *gmast.RawHTML:
		if node.Segments.Len() == 0 {
			return false
		}
		first := node.Segments.At(0)
		return isCommentHTML(first.Value(source))
	}
	return false
}

// nodeSpan returns the byte range a node occupies in the source, for nodes
// the rewrite engine knows how to excise. ok is false for anything else.
func nodeSpan(n gmast.Node, source []byte) (start, stop int, ok bool) {
	switch node := n.(type) {
	case *WikiLink:
		return node.Span.Start, node.Span.Stop, true
	case *Hashtag:
		return node.Span.Start, node.Span.Stop, true
	case *gmast.RawHTML:
		if node.Segments.Len() == 0 {
			return 0, 0, false
		}
		return node.Segments.At(0).Start, node.Segments.At(node.Segments.Len() - 1).Stop, true
	case *gmast.HTMLBlock:
		if node.Lines().Len() == 0 {
			return 0, 0, false
		}
		start = node.Lines().At(0).Start
		stop = node.Lines().At(node.Lines().Len() - 1).Stop
		if node.HasClosure() {
			stop = node.ClosureLine.Stop
		}
		return start, stop, true
	}
	return 0, 0, false
}
