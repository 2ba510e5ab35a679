package space

import (
	"bytes"

	"github.com/adrg/frontmatter"
)

// pageEnvelope is the frontmatter shape the publisher cares about.
// Everything else in the frontmatter is ignored.
type pageEnvelope struct {
	Tags  flexStrings `yaml:"tags"`
	Share flexStrings `yaml:"share"`
}

// flexStrings accepts either a scalar or a sequence of scalars.
// Authors write `share: pub` as often as `share: [pub, web]`; both decode
// to a slice so downstream containment checks see one shape.
type flexStrings []string

func (f *flexStrings) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		if s == "" {
			*f = nil
			return nil
		}
		*f = flexStrings{s}
		return nil
	}
	var vals []string
	if err := unmarshal(&vals); err != nil {
		return err
	}
	*f = flexStrings(vals)
	return nil
}

// StripFrontmatter returns the page body without its frontmatter block.
// Pages without frontmatter come back unchanged. Publication works on the
// body; the metadata header is an authoring concern, not site content.
func StripFrontmatter(source []byte) []byte {
	var raw map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return source
	}
	return rest
}

// parsePageMeta extracts tags and share markers from a page's frontmatter.
// Pages without frontmatter, or with frontmatter that doesn't decode, yield
// an empty envelope; publish selection must not fail on one bad page header.
func parsePageMeta(source []byte) pageEnvelope {
	var env pageEnvelope
	if _, err := frontmatter.Parse(bytes.NewReader(source), &env); err != nil {
		return pageEnvelope{}
	}
	return env
}
