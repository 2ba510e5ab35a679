package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
	gmast "github.com/yuin/goldmark/ast"
)

func TestRewrite_ReplaceWikiLink(t *testing.T) {
	doc := parseForTest(t, "Link to [[C]] here.")
	edits := Rewrite(doc, func(n gmast.Node) Outcome {
		if _, ok := n.(*WikiLink); ok {
			return ReplaceNode("_C_")
		}
		return KeepNode
	})

	out, err := ApplyEdits(doc.Source, edits)
	require.NoError(t, err)
	require.Equal(t, "Link to _C_ here.", string(out))

	// The tree no longer holds the link; a literal text node took its place.
	require.Empty(t, findNodes[*WikiLink](doc))
	strings := findNodes[*gmast.String](doc)
	require.Len(t, strings, 1)
	require.Equal(t, "_C_", string(strings[0].Value))
}

func TestRewrite_DeleteHashtag(t *testing.T) {
	doc := parseForTest(t, "Work #draft in progress.")
	edits := Rewrite(doc, func(n gmast.Node) Outcome {
		if _, ok := n.(*Hashtag); ok {
			return DeleteNode
		}
		return KeepNode
	})

	out, err := ApplyEdits(doc.Source, edits)
	require.NoError(t, err)
	require.NotContains(t, string(out), "#draft")
	require.Empty(t, findNodes[*Hashtag](doc))
}

func TestRewrite_DeleteCommentBlock(t *testing.T) {
	doc := parseForTest(t, "Before.\n\n<!-- secret -->\n\nAfter.")
	edits := Rewrite(doc, func(n gmast.Node) Outcome {
		if IsComment(n, doc.Source) {
			return DeleteNode
		}
		return KeepNode
	})

	out, err := ApplyEdits(doc.Source, edits)
	require.NoError(t, err)
	require.NotContains(t, string(out), "secret")
	require.Contains(t, string(out), "Before.")
	require.Contains(t, string(out), "After.")
}

func TestRewrite_KeepEverythingIsNoop(t *testing.T) {
	source := "Plain **bold** text with [link](a.md)."
	doc := parseForTest(t, source)
	edits := Rewrite(doc, func(gmast.Node) Outcome { return KeepNode })
	require.Empty(t, edits)
}

func TestCollectAttachments(t *testing.T) {
	doc := parseForTest(t, "![diagram](image.png) and [doc](files/spec.pdf) and [ext](https://example.com/x.png) and [anchor](#top)")
	attachments := CollectAttachments(doc)
	require.Equal(t, []string{"image.png", "files/spec.pdf"}, attachments)
}

func TestCollectAttachments_DuplicatesPermitted(t *testing.T) {
	doc := parseForTest(t, "![a](pic.png)\n\n![b](pic.png)")
	require.Equal(t, []string{"pic.png", "pic.png"}, CollectAttachments(doc))
}

func TestCollectAttachments_WikiLinksExcluded(t *testing.T) {
	doc := parseForTest(t, "See [[Other]] page.")
	require.Empty(t, CollectAttachments(doc))
}
