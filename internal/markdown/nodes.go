package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// KindWikiLink is the node kind for cross-document [[links]].
var KindWikiLink = gmast.NewNodeKind("WikiLink")

// WikiLink is an inline cross-document link: [[Target]], [[Target|alias]].
// The target may carry an @suffix qualifier ([[Target@123]]) naming a
// sub-anchor or version; the qualifier is not part of the page name.
type WikiLink struct {
	gmast.BaseInline

	// Target is the raw link target, including any @suffix.
	Target string

	// Alias is the display text after a | separator, empty when absent.
	Alias string

	// Span covers the whole [[...]] construct in the source.
	Span text.Segment
}

func (n *WikiLink) Kind() gmast.NodeKind { return KindWikiLink }

func (n *WikiLink) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{
		"Target": n.Target,
		"Alias":  n.Alias,
	}, nil)
}

// TargetPage returns the page name the link points at: the target with any
// @suffix qualifier stripped.
func (n *WikiLink) TargetPage() string {
	return StripQualifier(n.Target)
}

// DisplayText returns the text a reader sees for the link.
func (n *WikiLink) DisplayText() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Target
}

// KindHashtag is the node kind for inline #hashtags.
var KindHashtag = gmast.NewNodeKind("Hashtag")

// Hashtag is an inline authoring tag: #name.
type Hashtag struct {
	gmast.BaseInline

	// Tag is the tag name without the leading #.
	Tag string

	// Span covers the #tag construct in the source.
	Span text.Segment
}

func (n *Hashtag) Kind() gmast.NodeKind { return KindHashtag }

func (n *Hashtag) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{"Tag": n.Tag}, nil)
}

// StripQualifier removes an @suffix qualifier from a wiki link target.
func StripQualifier(target string) string {
	for i := 0; i < len(target); i++ {
		if target[i] == '@' {
			return target[:i]
		}
	}
	return target
}
