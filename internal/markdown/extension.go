package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// wikiLinkParser parses [[Target]] and [[Target|alias]] inline links.
// Wiki links do not span lines.
type wikiLinkParser struct{}

func (p *wikiLinkParser) Trigger() []byte { return []byte{'['} }

func (p *wikiLinkParser) Parse(parent gmast.Node, block text.Reader, pc parser.Context) gmast.Node {
	line, seg := block.PeekLine()
	if !bytes.HasPrefix(line, []byte("[[")) {
		return nil
	}
	end := bytes.Index(line, []byte("]]"))
	if end < 2 {
		return nil
	}
	inner := string(line[2:end])
	target, alias := inner, ""
	if i := strings.IndexByte(inner, '|'); i >= 0 {
		target, alias = inner[:i], strings.TrimSpace(inner[i+1:])
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}
	node := &WikiLink{
		Target: target,
		Alias:  alias,
		Span:   text.NewSegment(seg.Start, seg.Start+end+2),
	}
	block.Advance(end + 2)
	return node
}

// hashtagParser parses inline #tags. A tag starts at the beginning of a line
// or after whitespace/an opening bracket, and consists of word characters,
// '-', '_' and '/' (nested tags). "#123" is not a tag.
type hashtagParser struct{}

func (p *hashtagParser) Trigger() []byte { return []byte{'#'} }

func (p *hashtagParser) Parse(parent gmast.Node, block text.Reader, pc parser.Context) gmast.Node {
	line, seg := block.PeekLine()
	if seg.Start > 0 {
		prev := block.Source()[seg.Start-1]
		if !isTagBoundary(prev) {
			return nil
		}
	}
	end := 1
	for end < len(line) && isTagChar(line[end]) {
		end++
	}
	tag := string(line[1:end])
	if tag == "" || allDigits(tag) {
		return nil
	}
	node := &Hashtag{
		Tag:  tag,
		Span: text.NewSegment(seg.Start, seg.Start+end),
	}
	block.Advance(end)
	return node
}

func isTagBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '(', '[', '>':
		return true
	}
	return false
}

func isTagChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' || b == '-' || b == '_' || b == '/'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
