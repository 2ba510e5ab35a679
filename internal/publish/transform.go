package publish

import (
	"bytes"
	"fmt"

	gmast "github.com/yuin/goldmark/ast"

	"github.com/silverbulletmd/publish/internal/config"
	"github.com/silverbulletmd/publish/internal/markdown"
	"github.com/silverbulletmd/publish/internal/util/sets"
)

// TransformResult is the outcome of one document transform.
type TransformResult struct {
	// Text is the cleaned markdown mirror content, trimmed of surrounding
	// whitespace.
	Text []byte

	// Attachments lists local attachment references discovered in the
	// document, in traversal order, duplicates permitted.
	Attachments []string
}

// Transform rewrites a parsed document for publication and produces the
// markdown mirror content plus the discovered attachment references.
//
// Rewrite rules: wiki links to pages outside the published set degrade to
// _target_ literal text; annotation comments are always removed; hashtags
// are removed when the configuration says so. Everything else is untouched.
//
// The tree is mutated: after Transform no suppressed node remains and every
// retained wiki link resolves within the published set. Callers that also
// render HTML must do so before transforming.
func Transform(doc *markdown.Document, published sets.Set[string], cfg config.PublishConfig) (TransformResult, error) {
	attachments := markdown.CollectAttachments(doc)

	edits := markdown.Rewrite(doc, rewriteRule(doc.Source, published, cfg))
	text, err := markdown.ApplyEdits(doc.Source, edits)
	if err != nil {
		return TransformResult{}, fmt.Errorf("apply rewrite edits: %w", err)
	}

	return TransformResult{
		Text:        bytes.TrimSpace(text),
		Attachments: attachments,
	}, nil
}

// rewriteRule is the pure per-node outcome function for the publish rewrite.
func rewriteRule(source []byte, published sets.Set[string], cfg config.PublishConfig) markdown.Rule {
	return func(n gmast.Node) markdown.Outcome {
		switch node := n.(type) {
		case *markdown.WikiLink:
			if published.Has(node.TargetPage()) {
				return markdown.KeepNode
			}
			return markdown.ReplaceNode("_" + node.TargetPage() + "_")
		case *markdown.Hashtag:
			if cfg.RemoveHashtags {
				return markdown.DeleteNode
			}
			return markdown.KeepNode
		default:
			if markdown.IsComment(n, source) {
				return markdown.DeleteNode
			}
			return markdown.KeepNode
		}
	}
}
