package space

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FSSpace is a filesystem-backed Space. Pages are .md files under the root
// directory; the page name is the slash-separated relative path without the
// extension. Every other regular file is an attachment.
type FSSpace struct {
	root string
}

// NewFSSpace opens a space rooted at dir.
func NewFSSpace(dir string) (*FSSpace, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open space %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open space %s: not a directory", dir)
	}
	return &FSSpace{root: dir}, nil
}

// Root returns the space root directory.
func (s *FSSpace) Root() string { return s.root }

// ListPages walks the space and returns a record per markdown page.
func (s *FSSpace) ListPages(ctx context.Context) ([]PageRecord, error) {
	var records []PageRecord
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if strings.HasPrefix(d.Name(), ".") || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		name, nameErr := s.pageName(path)
		if nameErr != nil {
			return nameErr
		}
		source, readErr := os.ReadFile(path) // #nosec G304 - path comes from walking the space root
		if readErr != nil {
			return fmt.Errorf("read page %s: %w", name, readErr)
		}
		env := parsePageMeta(source)
		records = append(records, PageRecord{
			Name:  name,
			Tags:  env.Tags,
			Share: env.Share,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return records, nil
}

// ReadPage returns the raw markdown source of the named page.
func (s *FSSpace) ReadPage(ctx context.Context, name string) ([]byte, error) {
	path, err := s.safeJoin(name + ".md")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - path validated by safeJoin
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Name: name}
		}
		return nil, fmt.Errorf("read page %s: %w", name, err)
	}
	return data, nil
}

// ListFiles returns metadata for every non-markdown file in the space.
func (s *FSSpace) ListFiles(ctx context.Context) ([]FileMeta, error) {
	var files []FileMeta
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, FileMeta{
			Name:         filepath.ToSlash(rel),
			Size:         info.Size(),
			ContentType:  ContentTypeFor(rel),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// ReadFile returns the raw bytes of an attachment.
func (s *FSSpace) ReadFile(ctx context.Context, path string) ([]byte, error) {
	full, err := s.safeJoin(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full) // #nosec G304 - path validated by safeJoin
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Name: path}
		}
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return data, nil
}

// pageName derives the canonical page name for an absolute file path.
// Names are NFC-normalized so pages authored on macOS (NFD filenames) and
// Linux compare equal in the published set.
func (s *FSSpace) pageName(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", err
	}
	name := filepath.ToSlash(strings.TrimSuffix(rel, ".md"))
	return norm.NFC.String(name), nil
}

// safeJoin resolves a slash-separated space path under the root, rejecting
// traversal outside the space.
func (s *FSSpace) safeJoin(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes space root: %s", rel)
	}
	return full, nil
}

// ContentTypeFor returns the MIME type for a file path, defaulting to
// application/octet-stream when the extension is unknown.
func ContentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
