package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
	gmast "github.com/yuin/goldmark/ast"
)

func parseForTest(t *testing.T, source string) *Document {
	t.Helper()
	return New(RenderOptions{}).Parse([]byte(source))
}

func findNodes[T gmast.Node](doc *Document) []T {
	var found []T
	_ = gmast.Walk(doc.Root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if typed, ok := n.(T); ok {
			found = append(found, typed)
		}
		return gmast.WalkContinue, nil
	})
	return found
}

func TestParse_WikiLink(t *testing.T) {
	doc := parseForTest(t, "See [[Other Page]] for details.")
	links := findNodes[*WikiLink](doc)
	require.Len(t, links, 1)
	require.Equal(t, "Other Page", links[0].Target)
	require.Equal(t, "", links[0].Alias)
	require.Equal(t, "[[Other Page]]", string(doc.Source[links[0].Span.Start:links[0].Span.Stop]))
}

func TestParse_WikiLinkAlias(t *testing.T) {
	doc := parseForTest(t, "See [[Other Page|the docs]].")
	links := findNodes[*WikiLink](doc)
	require.Len(t, links, 1)
	require.Equal(t, "Other Page", links[0].Target)
	require.Equal(t, "the docs", links[0].Alias)
	require.Equal(t, "the docs", links[0].DisplayText())
}

func TestParse_WikiLinkQualifier(t *testing.T) {
	doc := parseForTest(t, "Pinned: [[Notes@1234]].")
	links := findNodes[*WikiLink](doc)
	require.Len(t, links, 1)
	require.Equal(t, "Notes@1234", links[0].Target)
	require.Equal(t, "Notes", links[0].TargetPage())
}

func TestParse_EmptyWikiLinkIgnored(t *testing.T) {
	doc := parseForTest(t, "Broken [[]] link.")
	require.Empty(t, findNodes[*WikiLink](doc))
}

func TestParse_Hashtag(t *testing.T) {
	doc := parseForTest(t, "Work in progress #draft here.")
	tags := findNodes[*Hashtag](doc)
	require.Len(t, tags, 1)
	require.Equal(t, "draft", tags[0].Tag)
	require.Equal(t, "#draft", string(doc.Source[tags[0].Span.Start:tags[0].Span.Stop]))
}

func TestParse_HashtagAtLineStart(t *testing.T) {
	doc := parseForTest(t, "#draft\n\nBody text.")
	tags := findNodes[*Hashtag](doc)
	require.Len(t, tags, 1)
	require.Equal(t, "draft", tags[0].Tag)
}

func TestParse_NestedHashtag(t *testing.T) {
	doc := parseForTest(t, "Tagged #project/alpha here.")
	tags := findNodes[*Hashtag](doc)
	require.Len(t, tags, 1)
	require.Equal(t, "project/alpha", tags[0].Tag)
}

func TestParse_HashtagNotMidWord(t *testing.T) {
	doc := parseForTest(t, "See issue a#b and a heading below.")
	require.Empty(t, findNodes[*Hashtag](doc))
}

func TestParse_NumericHashtagIgnored(t *testing.T) {
	doc := parseForTest(t, "Issue #123 is closed.")
	require.Empty(t, findNodes[*Hashtag](doc))
}

func TestParse_HeadingIsNotHashtag(t *testing.T) {
	doc := parseForTest(t, "# Title\n\nBody.")
	require.Empty(t, findNodes[*Hashtag](doc))
	require.Len(t, findNodes[*gmast.Heading](doc), 1)
}

func TestParse_HashtagInsideCodeSpanIgnored(t *testing.T) {
	doc := parseForTest(t, "Run `make #all` now.")
	require.Empty(t, findNodes[*Hashtag](doc))
}

func TestIsComment_BlockComment(t *testing.T) {
	doc := parseForTest(t, "Before.\n\n<!-- internal note -->\n\nAfter.")
	blocks := findNodes[*gmast.HTMLBlock](doc)
	require.Len(t, blocks, 1)
	require.True(t, IsComment(blocks[0], doc.Source))
}

func TestIsComment_InlineComment(t *testing.T) {
	doc := parseForTest(t, "Before <!-- hidden --> after.")
	raws := findNodes[*gmast.RawHTML](doc)
	require.Len(t, raws, 1)
	require.True(t, IsComment(raws[0], doc.Source))
}

func TestIsComment_RegularHTMLIsNot(t *testing.T) {
	doc := parseForTest(t, "Inline <b>bold</b> here.")
	for _, raw := range findNodes[*gmast.RawHTML](doc) {
		require.False(t, IsComment(raw, doc.Source))
	}
}

func TestStripQualifier(t *testing.T) {
	require.Equal(t, "Page", StripQualifier("Page@123"))
	require.Equal(t, "Page", StripQualifier("Page"))
	require.Equal(t, "", StripQualifier("@anchor"))
}
