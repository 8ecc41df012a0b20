package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crazy-max/zipstore/pkg/config"
	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, cli config.Cli) (*App, *bytes.Buffer) {
	t.Helper()
	a, err := New(config.Meta{ID: "zipstore"}, cli)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	var buf bytes.Buffer
	a.out = &buf
	return a, &buf
}

func workspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	for name, content := range map[string]string{
		"top":               "top",
		"folder1/file1.txt": "one",
		"folder2/file2.log": "two",
	} {
		p := filepath.Join(ws, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return ws
}

func TestCommands(t *testing.T) {
	ws := workspace(t)
	archive := filepath.Join(t.TempDir(), "archive.zip")

	a, out := newApp(t, config.Cli{Archive: config.ArchiveCmd{Archive: archive, Workspace: ws, Pattern: "**"}})
	require.NoError(t, a.Start("archive <archive> <workspace>"))
	assert.Contains(t, out.String(), "3 entries")

	a, out = newApp(t, config.Cli{Ls: config.LsCmd{Archive: archive}})
	require.NoError(t, a.Start("ls <archive>"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "folder1/", lines[0])
	assert.Equal(t, "folder2/", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "top\t3\t"))

	a, out = newApp(t, config.Cli{Ls: config.LsCmd{Archive: archive, Recursive: true}})
	require.NoError(t, a.Start("ls <archive>"))
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 5)

	a, out = newApp(t, config.Cli{Glob: config.GlobCmd{Archive: archive, Pattern: "*.txt", Path: "folder1"}})
	require.NoError(t, a.Start("glob <archive> <pattern> <path>"))
	assert.Equal(t, "file1.txt\n", out.String())

	a, out = newApp(t, config.Cli{Cat: config.CatCmd{Archive: archive, Path: "folder2/file2.log"}})
	require.NoError(t, a.Start("cat <archive> <path>"))
	assert.Equal(t, "two", out.String())

	dist := filepath.Join(t.TempDir(), "dist")
	a, _ = newApp(t, config.Cli{Extract: config.ExtractCmd{Archive: archive, Dist: dist, Includes: []string{"folder1"}}})
	require.NoError(t, a.Start("extract <archive> <dist>"))
	assert.FileExists(t, filepath.Join(dist, "folder1", "file1.txt"))
	assert.NoFileExists(t, filepath.Join(dist, "top"))

	a, _ = newApp(t, config.Cli{Rm: config.RmCmd{Archive: archive}})
	require.NoError(t, a.Start("rm <archive>"))
	assert.NoFileExists(t, archive)
	require.NoError(t, a.Start("rm <archive>"))
}

func TestArchiveExplicitArtifacts(t *testing.T) {
	ws := workspace(t)
	archive := filepath.Join(t.TempDir(), "archive.zip")

	a, _ := newApp(t, config.Cli{Archive: config.ArchiveCmd{
		Archive:   archive,
		Workspace: ws,
		Artifacts: []string{"logs/out.log=folder2/file2.log", "top"},
	}})
	require.NoError(t, a.Start("archive <archive> <workspace> <artifact>"))

	files, err := vfs.ListPattern(directory(archive, ""), "**")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/out.log", "top"}, files)
}

func TestArchiveInterrupted(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "archive.zip")
	a, _ := newApp(t, config.Cli{Archive: config.ArchiveCmd{Archive: archive, Workspace: workspace(t), Pattern: "**"}})
	a.Close()

	require.ErrorIs(t, a.Start("archive <archive> <workspace>"), vfs.ErrWriteFailure)
	assert.NoFileExists(t, archive)
}

func TestLsMissingFolder(t *testing.T) {
	a, _ := newApp(t, config.Cli{Ls: config.LsCmd{Archive: filepath.Join(t.TempDir(), "none.zip"), Path: "x"}})
	require.ErrorIs(t, a.Start("ls <archive> <path>"), vfs.ErrNotFound)
}

func TestUnknownCommand(t *testing.T) {
	a, _ := newApp(t, config.Cli{})
	require.Error(t, a.Start("frobnicate"))
	require.Error(t, a.Start(""))
}
