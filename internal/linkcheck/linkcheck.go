// Package linkcheck verifies the generated site: every relative link in the
// rendered HTML should resolve to something under the output root.
package linkcheck

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Issue is one unresolved reference found in the output.
type Issue struct {
	// Page is the HTML file the reference was found in, relative to root.
	Page string
	// Ref is the href/src value that did not resolve.
	Ref string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: broken reference %q", i.Page, i.Ref)
}

// VerifyOutput walks the output root and checks every relative href/src in
// the generated HTML files.
func VerifyOutput(root string) ([]Issue, error) {
	var issues []Issue
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		refs, parseErr := extractRefs(p)
		if parseErr != nil {
			return fmt.Errorf("parse %s: %w", rel, parseErr)
		}
		for _, ref := range refs {
			if !resolves(root, filepath.Dir(p), ref) {
				issues = append(issues, Issue{Page: filepath.ToSlash(rel), Ref: ref})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// extractRefs tokenizes one HTML file and returns its href and src values.
func extractRefs(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from walking the output root
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []string
	tokenizer := html.NewTokenizer(f)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF terminates; other errors are tolerated since the
			// output is our own renderer's.
			return refs, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			for _, attr := range token.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					refs = append(refs, attr.Val)
				}
			}
		}
	}
}

// resolves reports whether a reference points at an existing artifact.
// External and fragment references are considered fine.
func resolves(root, fromDir, ref string) bool {
	if ref == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "mailto:") {
		return true
	}
	// Strip query/fragment before resolving.
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return true
	}

	var target string
	if strings.HasPrefix(ref, "/") {
		target = filepath.Join(root, filepath.FromSlash(path.Clean(ref)))
	} else {
		target = filepath.Join(fromDir, filepath.FromSlash(path.Clean(ref)))
	}

	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	if info.IsDir() {
		// A directory resolves when it holds a generated page.
		_, err = os.Stat(filepath.Join(target, "index.html"))
		return err == nil
	}
	return true
}
