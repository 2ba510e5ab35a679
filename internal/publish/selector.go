package publish

import (
	"github.com/silverbulletmd/publish/internal/config"
	"github.com/silverbulletmd/publish/internal/space"
	"github.com/silverbulletmd/publish/internal/util/sets"
)

// ShareMarker is the literal share marker that opts a page into publication.
const ShareMarker = "pub"

// SelectPages computes the set of page names eligible for publication.
//
// With publishAll the whole catalog is selected. Otherwise a page is selected
// when any rule matches: a tag intersects the configured tags, the name
// starts with a configured prefix, or the page carries the "pub" share
// marker. The rules are independent; the result is a set either way, and an
// empty result is valid.
func SelectPages(catalog map[string]space.PageRecord, cfg config.PublishConfig) sets.Set[string] {
	selected := sets.New[string]()
	if cfg.PublishAll {
		for name := range catalog {
			selected.Add(name)
		}
		return selected
	}
	for name, rec := range catalog {
		if matchesTags(rec, cfg.Tags) || matchesPrefix(name, cfg.Prefixes) || hasShareMarker(rec) {
			selected.Add(name)
		}
	}
	return selected
}

func matchesTags(rec space.PageRecord, tags []string) bool {
	if len(tags) == 0 || len(rec.Tags) == 0 {
		return false
	}
	want := sets.New(tags...)
	for _, tag := range rec.Tags {
		if want.Has(tag) {
			return true
		}
	}
	return false
}

func matchesPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func hasShareMarker(rec space.PageRecord) bool {
	for _, marker := range rec.Share {
		if marker == ShareMarker {
			return true
		}
	}
	return false
}
