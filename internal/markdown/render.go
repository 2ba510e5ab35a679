package markdown

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/silverbulletmd/publish/internal/util/sets"
)

// RenderOptions controls HTML rendering for one publish run.
type RenderOptions struct {
	// Published is the set of page names that exist in the output; wiki
	// links to anything else degrade to emphasized text.
	Published sets.Set[string]

	// PagePrefix is prepended to resolved wiki link targets ("/" for a
	// site served at the root).
	PagePrefix string

	// AttachmentPrefix is prepended to scheme-less link and image
	// destinations so attachments resolve under the output root.
	AttachmentPrefix string

	// RemoveHashtags suppresses hashtag rendering.
	RemoveHashtags bool

	// HardBreaks renders soft line breaks as <br>.
	HardBreaks bool
}

// nodeRenderer renders the wiki constructs and overrides link, image and raw
// HTML rendering with publish-aware behavior.
type nodeRenderer struct {
	opts RenderOptions
}

func newNodeRenderer(opts RenderOptions) renderer.NodeRenderer {
	return &nodeRenderer{opts: opts}
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindWikiLink, r.renderWikiLink)
	reg.Register(KindHashtag, r.renderHashtag)
	reg.Register(gmast.KindLink, r.renderLink)
	reg.Register(gmast.KindImage, r.renderImage)
	reg.Register(gmast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(gmast.KindRawHTML, r.renderRawHTML)
}

func (r *nodeRenderer) renderWikiLink(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	link := node.(*WikiLink)
	page := link.TargetPage()
	if r.opts.Published.Has(page) {
		_, _ = w.WriteString(`<a href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(r.opts.PagePrefix+page+"/"), true)))
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(util.EscapeHTML([]byte(link.DisplayText())))
		_, _ = w.WriteString("</a>")
		return gmast.WalkContinue, nil
	}
	// Dead link: degrade to readable prose, same as the markdown mirror.
	_, _ = w.WriteString("<em>")
	_, _ = w.Write(util.EscapeHTML([]byte(page)))
	_, _ = w.WriteString("</em>")
	return gmast.WalkContinue, nil
}

func (r *nodeRenderer) renderHashtag(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering || r.opts.RemoveHashtags {
		return gmast.WalkContinue, nil
	}
	tag := node.(*Hashtag)
	_, _ = w.WriteString(`<span class="hashtag">#`)
	_, _ = w.Write(util.EscapeHTML([]byte(tag.Tag)))
	_, _ = w.WriteString("</span>")
	return gmast.WalkContinue, nil
}

func (r *nodeRenderer) renderLink(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	link := node.(*gmast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return gmast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(r.resolveLocal(string(link.Destination))), true)))
	_ = w.WriteByte('"')
	if len(link.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(link.Title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	return gmast.WalkContinue, nil
}

func (r *nodeRenderer) renderImage(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	img := node.(*gmast.Image)
	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(r.resolveLocal(string(img.Destination))), true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML([]byte(textContent(img, source))))
	_ = w.WriteByte('"')
	if len(img.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(img.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(">")
	return gmast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	block := node.(*gmast.HTMLBlock)
	if IsComment(node, source) {
		return gmast.WalkContinue, nil
	}
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		_, _ = w.Write(line.Value(source))
	}
	if block.HasClosure() {
		_, _ = w.Write(block.ClosureLine.Value(source))
	}
	return gmast.WalkContinue, nil
}

func (r *nodeRenderer) renderRawHTML(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkSkipChildren, nil
	}
	raw := node.(*gmast.RawHTML)
	if IsComment(node, source) {
		return gmast.WalkSkipChildren, nil
	}
	for i := 0; i < raw.Segments.Len(); i++ {
		seg := raw.Segments.At(i)
		_, _ = w.Write(seg.Value(source))
	}
	return gmast.WalkSkipChildren, nil
}

// resolveLocal prefixes scheme-less relative destinations so attachments
// resolve under the output root regardless of the page's depth.
func (r *nodeRenderer) resolveLocal(dest string) string {
	if r.opts.AttachmentPrefix == "" || dest == "" {
		return dest
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return dest
	}
	return r.opts.AttachmentPrefix + dest
}

// textContent concatenates the text of a node's descendants.
func textContent(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := child.(*gmast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
		return gmast.WalkContinue, nil
	})
	return sb.String()
}
