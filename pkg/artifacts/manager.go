// Package artifacts stores the artifacts of one build as a single zip
// archive in the build folder.
package artifacts

import (
	"context"
	"io"
	"path/filepath"

	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/crazy-max/zipstore/pkg/zipstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ArchiveName is the file name of the archive inside the build folder.
const ArchiveName = "archive.zip"

// Manager archives and serves the artifacts of a build.
type Manager struct {
	buildDir string
	logger   zerolog.Logger
	opts     zipstore.BuildOpts
}

// Opts holds manager options
type Opts struct {
	Store                bool
	SelectiveCompression bool
}

// New creates a manager for the build folder buildDir.
func New(buildDir string, opts Opts) *Manager {
	logger := log.With().Str("build", buildDir).Logger()
	return &Manager{
		buildDir: buildDir,
		logger:   logger,
		opts: zipstore.BuildOpts{
			Logger:               logger,
			Store:                opts.Store,
			SelectiveCompression: opts.SelectiveCompression,
		},
	}
}

// ArchivePath returns the location of the archive.
func (m *Manager) ArchivePath() string {
	return filepath.Join(m.buildDir, ArchiveName)
}

// Archive stores artifacts, a map of artifact paths to files relative to
// workspace, as the archive of the build.
func (m *Manager) Archive(ctx context.Context, workspace string, artifacts map[string]string) (*zipstore.BuildResult, error) {
	m.logger.Info().Int("artifacts", len(artifacts)).Str("workspace", workspace).Msg("Archiving artifacts")
	res, err := zipstore.Build(ctx, m.ArchivePath(), workspace, zipstore.Mapping(artifacts), m.opts)
	if err != nil {
		return nil, errors.Wrap(err, "cannot archive artifacts")
	}
	return res, nil
}

// Delete removes the archive and reports whether there was one.
func (m *Manager) Delete() (bool, error) {
	removed, err := zipstore.Delete(m.ArchivePath())
	if err != nil {
		return false, err
	}
	if removed {
		m.logger.Info().Msg("Artifacts deleted")
	}
	return removed, nil
}

// Root returns the root of the archived artifacts.
func (m *Manager) Root() vfs.VirtualFile {
	return zipstore.Root(m.ArchivePath())
}

// Load streams the artifact at the exact path artifact.
func (m *Manager) Load(artifact string) (io.ReadCloser, error) {
	return zipstore.At(m.ArchivePath(), vpath.Clean(artifact)).Open()
}
