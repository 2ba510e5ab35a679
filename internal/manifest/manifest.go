// Package manifest derives the output manifest from the generated site.
//
// The manifest is never tracked incrementally: it is built by re-listing the
// output root after all writes have settled, so it always describes what is
// actually on disk.
package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/silverbulletmd/publish/internal/space"
)

// FileName is the manifest's location under the output root.
const FileName = "index.json"

// Artifact describes one downloadable output file.
type Artifact struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	LastModified time.Time `json:"lastModified"`
	Perm         string    `json:"perm"`
}

// Build lists the artifacts under the output root. HTML artifacts are
// excluded: the manifest describes raw assets, not generated pages. Paths
// are relative to the root.
func Build(root string) ([]Artifact, error) {
	artifacts := make([]Artifact, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		contentType := space.ContentTypeFor(path)
		if strings.HasPrefix(contentType, "text/html") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == FileName {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		artifacts = append(artifacts, Artifact{
			Name:         filepath.ToSlash(rel),
			Size:         info.Size(),
			ContentType:  contentType,
			LastModified: info.ModTime(),
			Perm:         "ro",
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list output artifacts: %w", err)
	}
	return artifacts, nil
}

// Write serializes the artifact list as indented JSON to {root}/index.json.
func Write(root string, artifacts []Artifact) error {
	data, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { // #nosec G306 - published artifact
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
