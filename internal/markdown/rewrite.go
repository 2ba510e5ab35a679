package markdown

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"
)

// OutcomeKind enumerates what a rewrite rule decided for a visited node.
type OutcomeKind int

const (
	// Keep leaves the node as is.
	Keep OutcomeKind = iota
	// Delete removes the node from the tree and excises its source range.
	Delete
	// ReplaceWithText swaps the node for a literal text node and replaces
	// its source range with the same text.
	ReplaceWithText
)

// Outcome is a rewrite rule's decision for one node.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// KeepNode is the zero-value Keep outcome.
var KeepNode = Outcome{Kind: Keep}

// DeleteNode removes the node.
var DeleteNode = Outcome{Kind: Delete}

// ReplaceNode replaces the node with literal text.
func ReplaceNode(text string) Outcome {
	return Outcome{Kind: ReplaceWithText, Text: text}
}

// Rule is a pure function deciding the outcome for a node.
type Rule func(n gmast.Node) Outcome

// Rewrite walks the tree depth-first applying rule to every node. Deleted and
// replaced nodes are detached from the tree, and the corresponding source
// edits are returned so the caller can produce a minimal-diff text rendering.
//
// A matched node whose source span cannot be determined (unexpected shape) is
// left as is rather than failing the transform.
func Rewrite(doc *Document, rule Rule) []Edit {
	var edits []Edit
	rewriteChildren(doc.Root, doc.Source, rule, &edits)
	return edits
}

func rewriteChildren(parent gmast.Node, source []byte, rule Rule, edits *[]Edit) {
	for child := parent.FirstChild(); child != nil; {
		// Capture the sibling before any detach invalidates it.
		next := child.NextSibling()
		switch outcome := rule(child); outcome.Kind {
		case Delete:
			if start, stop, ok := nodeSpan(child, source); ok {
				*edits = append(*edits, Edit{Start: start, End: stop})
				parent.RemoveChild(parent, child)
			}
		case ReplaceWithText:
			if start, stop, ok := nodeSpan(child, source); ok {
				*edits = append(*edits, Edit{Start: start, End: stop, Replacement: []byte(outcome.Text)})
				parent.ReplaceChild(parent, child, gmast.NewString([]byte(outcome.Text)))
			}
		default:
			rewriteChildren(child, source, rule, edits)
		}
		child = next
	}
}

// CollectAttachments returns the local attachment references of a document in
// traversal order, duplicates permitted. A URL-type node references a local
// attachment when its destination carries no scheme separator ("://");
// empty destinations and pure #fragment destinations are not files.
func CollectAttachments(doc *Document) []string {
	var attachments []string
	_ = gmast.Walk(doc.Root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		var dest string
		switch node := n.(type) {
		case *gmast.Image:
			dest = string(node.Destination)
		case *gmast.Link:
			dest = string(node.Destination)
		case *gmast.AutoLink:
			dest = string(node.URL(doc.Source))
		default:
			return gmast.WalkContinue, nil
		}
		if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "#") {
			return gmast.WalkContinue, nil
		}
		attachments = append(attachments, dest)
		return gmast.WalkContinue, nil
	})
	return attachments
}
