package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeOutputFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	writeOutputFile(t, root, "B.md", "# B\n")
	writeOutputFile(t, root, "B/index.html", "<html></html>")
	writeOutputFile(t, root, "assets/diagram.png", "png-bytes")
	writeOutputFile(t, root, FileName, "[]")

	artifacts, err := Build(root)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	byName := make(map[string]Artifact, len(artifacts))
	for _, a := range artifacts {
		byName[a.Name] = a
	}
	require.Contains(t, byName, "B.md")
	require.Contains(t, byName, "assets/diagram.png")

	png := byName["assets/diagram.png"]
	require.Equal(t, int64(len("png-bytes")), png.Size)
	require.Equal(t, "image/png", png.ContentType)
	require.Equal(t, "ro", png.Perm)
	require.False(t, png.LastModified.IsZero())
}

func TestBuild_EmptyRoot(t *testing.T) {
	artifacts, err := Build(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, artifacts)
}

func TestWrite(t *testing.T) {
	root := t.TempDir()
	artifacts := []Artifact{{Name: "a.png", Size: 3, ContentType: "image/png", Perm: "ro"}}
	require.NoError(t, Write(root, artifacts))

	data, err := os.ReadFile(filepath.Join(root, FileName))
	require.NoError(t, err)
	require.True(t, len(data) > 0 && data[len(data)-1] == '\n')

	var decoded []Artifact
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, artifacts, decoded)
}

func TestWrite_EmptyListIsArray(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Write(root, []Artifact{}))

	data, err := os.ReadFile(filepath.Join(root, FileName))
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}
