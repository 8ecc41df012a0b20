package zipstore

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// navigate walks from the root through Child, one segment at a time.
func navigate(archive, p string) vfs.VirtualFile {
	var vf vfs.VirtualFile = Root(archive)
	for _, segment := range strings.Split(p, "/") {
		vf = vf.Child(segment)
	}
	return vf
}

func names(files []vfs.VirtualFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name())
	}
	return out
}

func TestNodeRoundTrip(t *testing.T) {
	const special = "Příliš_žluťoučký_kůň/úpěl_ďábelské_ódy"
	files := map[string]string{
		"top":                     "top",
		"a/b/c/deep.txt":          "deep",
		"a/sibling":               "",
		"space dir/file name.txt": "spaced",
		special:                   "special",
	}
	archive := buildArchive(t, files)

	for name, content := range files {
		vf := navigate(archive, name)
		assert.True(t, vf.IsFile(), name)
		assert.False(t, vf.IsDirectory(), name)
		assert.True(t, vf.Exists(), name)
		assert.EqualValues(t, len(content), vf.Length(), name)
		assert.False(t, vf.LastModified().IsZero(), name)
		assert.Equal(t, content, readAll(t, vf), name)
	}
}

func TestNodeDirectoryEmergence(t *testing.T) {
	archive := buildArchive(t, map[string]string{"a/b": "b", "a/c": "c"})

	a := Root(archive).Child("a")
	assert.True(t, a.IsDirectory())
	assert.False(t, a.IsFile())
	assert.True(t, a.Exists())
	assert.Equal(t, At(archive, "a/"), a)

	children, err := a.List()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"b", "c"}, names(children)); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	for _, c := range children {
		assert.True(t, c.IsFile())
		assert.Equal(t, a, c.Parent())
	}
}

func TestNodeAbsentArchive(t *testing.T) {
	root := Root(filepath.Join(t.TempDir(), "archive.zip"))

	assert.False(t, root.Exists())
	assert.False(t, root.IsDirectory())
	children, err := root.List()
	require.NoError(t, err)
	assert.Empty(t, children)

	x := root.Child("x")
	assert.False(t, x.Exists())
	assert.EqualValues(t, 0, x.Length())
	assert.True(t, x.LastModified().IsZero())
	_, err = x.Open()
	require.ErrorIs(t, err, vfs.ErrNotFound)
	require.NotErrorIs(t, err, vfs.ErrIsDirectory)
}

func TestNodeListGlob(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"top":               "top",
		"folder1/file1.txt": "one",
		"folder2/file2.log": "two",
	})
	root := Root(archive)

	cases := []struct {
		node    vfs.VirtualFile
		pattern string
		want    []string
	}{
		{node: root, pattern: "**", want: []string{"folder1/file1.txt", "folder2/file2.log", "top"}},
		{node: root, pattern: "**/*.log", want: []string{"folder2/file2.log"}},
		{node: root, pattern: "folder*/*", want: []string{"folder1/file1.txt", "folder2/file2.log"}},
		{node: root, pattern: "", want: []string{}},
		{node: root.Child("folder1"), pattern: "**", want: []string{"file1.txt"}},
		{node: root.Child("folder1"), pattern: "*log", want: []string{}},
		{node: root.Child("folder1"), pattern: "*.txt", want: []string{"file1.txt"}},
	}
	for _, tt := range cases {
		t.Run(tt.node.Name()+"/"+tt.pattern, func(t *testing.T) {
			got, err := vfs.ListPattern(tt.node, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := root.ListGlob(nil)
	require.ErrorIs(t, err, vfs.ErrInvalidArgument)
	_, err = vfs.ListPattern(root.Child("top"), "**")
	require.ErrorIs(t, err, vfs.ErrInvalidArgument)
}

func TestNodeNavigation(t *testing.T) {
	archive := buildArchive(t, map[string]string{"a/b/c": "c"})
	root := Root(archive)

	assert.Equal(t, "", root.Name())
	assert.Nil(t, root.Parent())

	c := root.Child("a").Child("b").Child("c")
	assert.Equal(t, "c", c.Name())
	assert.Equal(t, At(archive, "a/b/c"), c)
	assert.Equal(t, At(archive, "a/b/"), c.Parent())
	assert.Equal(t, "b", c.Parent().Name())
	assert.Equal(t, At(archive, "a/"), c.Parent().Parent())
	assert.Equal(t, root, c.Parent().Parent().Parent())

	assert.Equal(t, c, root.Child("a/b/c"))
	assert.Equal(t, root.Child("a"), root.Child("/a/"))
	assert.Equal(t, root, root.Child(""))

	missing := root.Child("a").Child("zzz")
	assert.Equal(t, At(archive, "a/zzz"), missing)
	assert.False(t, missing.Exists())
	assert.True(t, missing.CanRead())
}

func TestNodeEqual(t *testing.T) {
	archive := buildArchive(t, map[string]string{"a/b": "b"})
	other := filepath.Join(t.TempDir(), "other.zip")

	assert.True(t, Root(archive).Equal(Root(archive)))
	assert.True(t, At(archive, "a/b").Equal(Root(archive).Child("a").Child("b")))
	assert.False(t, At(archive, "a/b").Equal(At(other, "a/b")))
	assert.False(t, At(archive, "a/").Equal(At(archive, "a")))
	assert.False(t, Root(archive).Equal(vfs.ForFile(t.TempDir())))
}

func TestNodeOpenDirectory(t *testing.T) {
	archive := buildArchive(t, map[string]string{"a/b": "b"})

	_, err := Root(archive).Open()
	require.ErrorIs(t, err, vfs.ErrIsDirectory)
	_, err = Root(archive).Child("a").Open()
	require.ErrorIs(t, err, vfs.ErrIsDirectory)
	require.ErrorIs(t, err, vfs.ErrNotFound)
	_, err = Root(archive).Child("a").Child("nope").Open()
	require.ErrorIs(t, err, vfs.ErrNotFound)
	require.NotErrorIs(t, err, vfs.ErrIsDirectory)
}

func TestNodeCorruptArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(archive, []byte("PK garbage"), 0o644))
	root := Root(archive)

	assert.False(t, root.Exists())
	assert.False(t, root.IsDirectory())
	assert.False(t, root.Child("x").IsFile())
	assert.EqualValues(t, 0, root.Child("x").Length())
	children, err := root.List()
	require.NoError(t, err)
	assert.Empty(t, children)

	_, err = root.Child("x").Open()
	require.ErrorIs(t, err, vfs.ErrIOFailure)
	assert.True(t, strings.HasPrefix(err.Error(), `cannot open "x": scan `), err.Error())
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "scan", pathErr.Op)
	_, err = root.ListGlob(mustGlob(t, "**"))
	require.ErrorIs(t, err, vfs.ErrIOFailure)
}

func TestNodeURI(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{path: "", want: "zip:./"},
		{path: "a/b.txt", want: "zip:./a/b.txt"},
		{path: "dir/", want: "zip:./dir/"},
		{path: "space dir/x#y?.txt", want: "zip:./space%20dir/x%23y%3F.txt"},
		{path: "Příliš/kůň", want: "zip:./P%C5%99%C3%ADli%C5%A1/k%C5%AF%C5%88"},
	}
	for _, tt := range cases {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, At("archive.zip", tt.path).URI().String())
		})
	}
}

func TestNodeNonASCII(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"Příliš_žluťoučký_kůň/úpěl_ďábelské_ódy": "horse",
		"日本語/ファイル.txt":                           "nihongo",
	})
	root := Root(archive)

	children, err := root.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Příliš_žluťoučký_kůň", "日本語"}, names(children))

	dir := root.Child("Příliš_žluťoučký_kůň")
	assert.True(t, dir.IsDirectory())
	files, err := dir.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "úpěl_ďábelské_ódy", files[0].Name())
	assert.Equal(t, "horse", readAll(t, files[0]))
	assert.Equal(t, "nihongo", readAll(t, root.Child("日本語").Child("ファイル.txt")))
}
