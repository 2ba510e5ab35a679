package space

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSpaceFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testSpace(t *testing.T) *FSSpace {
	t.Helper()
	root := t.TempDir()
	writeSpaceFile(t, root, "index.md", "# Home\n")
	writeSpaceFile(t, root, "blog/first.md", "---\ntags: [blog]\nshare: pub\n---\n# First\n")
	writeSpaceFile(t, root, "blog/diagram.png", "png-bytes")
	writeSpaceFile(t, root, ".trash/old.md", "# Old\n")
	writeSpaceFile(t, root, ".hidden.md", "# Hidden\n")

	sp, err := NewFSSpace(root)
	require.NoError(t, err)
	return sp
}

func TestFSSpace_ListPages(t *testing.T) {
	sp := testSpace(t)
	records, err := sp.ListPages(context.Background())
	require.NoError(t, err)

	catalog := Catalog(records)
	require.Len(t, catalog, 2)
	require.Contains(t, catalog, "index")
	require.Contains(t, catalog, "blog/first")
	require.Equal(t, []string{"blog"}, catalog["blog/first"].Tags)
	require.Equal(t, []string{"pub"}, catalog["blog/first"].Share)
}

func TestFSSpace_ReadPage(t *testing.T) {
	sp := testSpace(t)
	data, err := sp.ReadPage(context.Background(), "index")
	require.NoError(t, err)
	require.Equal(t, "# Home\n", string(data))
}

func TestFSSpace_ReadPageNotFound(t *testing.T) {
	sp := testSpace(t)
	_, err := sp.ReadPage(context.Background(), "no/such/page")
	require.Error(t, err)
	require.True(t, IsNotFound(err))
}

func TestFSSpace_ListFiles(t *testing.T) {
	sp := testSpace(t)
	files, err := sp.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "blog/diagram.png", files[0].Name)
	require.Equal(t, "image/png", files[0].ContentType)
	require.Equal(t, int64(len("png-bytes")), files[0].Size)
}

func TestFSSpace_ReadFile(t *testing.T) {
	sp := testSpace(t)
	data, err := sp.ReadFile(context.Background(), "blog/diagram.png")
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	_, err = sp.ReadFile(context.Background(), "missing.png")
	require.True(t, IsNotFound(err))
}

func TestFSSpace_RejectsTraversal(t *testing.T) {
	sp := testSpace(t)
	_, err := sp.ReadFile(context.Background(), "../outside.txt")
	require.Error(t, err)
	require.False(t, IsNotFound(err))
}

func TestNewFSSpace_NotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewFSSpace(file)
	require.Error(t, err)
	_, err = NewFSSpace(filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestCatalog_LaterEntryWins(t *testing.T) {
	catalog := Catalog([]PageRecord{
		{Name: "A", Tags: []string{"old"}},
		{Name: "A", Tags: []string{"new"}},
	})
	require.Len(t, catalog, 1)
	require.Equal(t, []string{"new"}, catalog["A"].Tags)
}

func TestContentTypeFor(t *testing.T) {
	require.Equal(t, "image/png", ContentTypeFor("a/b.png"))
	require.Equal(t, "application/octet-stream", ContentTypeFor("a/b.weird"))
}
