package zipstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/klauspost/compress/zip"
	"github.com/mholt/archives"
	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// WritingSuffix is appended to the archive path while a build is running.
const WritingSuffix = ".writing.zip"

// Artifacts yields destination paths inside the archive and the source
// files, relative to the source root, they are read from.
type Artifacts iter.Seq2[string, string]

// Mapping returns the pairs of m ordered by destination.
func Mapping(m map[string]string) Artifacts {
	return func(yield func(string, string) bool) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

// BuildOpts holds archive build options
type BuildOpts struct {
	Logger zerolog.Logger
	// Store disables compression.
	Store bool
	// SelectiveCompression stores files with an already compressed
	// extension as is.
	SelectiveCompression bool
}

// BuildResult describes a published archive.
type BuildResult struct {
	Entries int
	Size    int64
	Digest  digest.Digest
}

type buildOutcome struct {
	res *BuildResult
	err error
}

// Build writes one entry per artifact to archive+WritingSuffix and renames it
// to archive once every entry is written. A source directory becomes an
// explicit directory entry.
//
// Build returns as soon as ctx is done, even when artifacts is blocked. The
// archive is then left untouched and the temporary file may remain.
func Build(ctx context.Context, archive, sourceRoot string, artifacts Artifacts, opts BuildOpts) (*BuildResult, error) {
	logger := opts.Logger.With().Str("archive", archive).Logger()
	tmp := archive + WritingSuffix

	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan buildOutcome, 1)
	go func() {
		res, err := writeArchive(bctx, tmp, sourceRoot, artifacts, opts)
		done <- buildOutcome{res: res, err: err}
	}()

	var out buildOutcome
	select {
	case <-ctx.Done():
		buildsTotal.WithLabelValues("cancelled").Inc()
		logger.Warn().Err(ctx.Err()).Msg("Build interrupted, archive not published")
		return nil, buildFailure(ctx.Err())
	case out = <-done:
	}
	if out.err == nil {
		out.err = ctx.Err()
	}
	if out.err != nil {
		buildsTotal.WithLabelValues("failed").Inc()
		return nil, buildFailure(out.err)
	}

	if err := os.Rename(tmp, archive); err != nil {
		buildsTotal.WithLabelValues("failed").Inc()
		return nil, buildFailure(errors.Wrap(err, "cannot publish archive"))
	}
	buildsTotal.WithLabelValues("published").Inc()
	logger.Info().
		Int("entries", out.res.Entries).
		Int64("size", out.res.Size).
		Str("digest", out.res.Digest.String()).
		Msg("Archive published")
	return out.res, nil
}

func buildFailure(err error) error {
	return fmt.Errorf("%w: %w", vfs.ErrWriteFailure, err)
}

func writeArchive(ctx context.Context, tmp, sourceRoot string, artifacts Artifacts, opts BuildOpts) (_ *BuildResult, err error) {
	root, err := os.OpenRoot(sourceRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open source root %q", sourceRoot)
	}
	defer root.Close()

	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return nil, errors.Wrap(err, "cannot create archive folder")
	}
	f, err := os.Create(tmp)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create temporary archive")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "cannot close temporary archive")
		}
	}()

	digester := digest.Canonical.Digester()
	w := &countingWriter{w: io.MultiWriter(f, digester.Hash())}

	entries, err := writeEntries(ctx, w, root, artifacts, opts)
	if err != nil {
		return nil, err
	}
	// the zip writer is closed by the archiver which drops its error
	if w.err != nil {
		return nil, errors.Wrap(w.err, "cannot write archive")
	}
	if err := f.Sync(); err != nil {
		return nil, errors.Wrap(err, "cannot sync archive")
	}
	return &BuildResult{
		Entries: entries,
		Size:    w.n,
		Digest:  digester.Digest(),
	}, nil
}

func writeEntries(ctx context.Context, w io.Writer, root *os.Root, artifacts Artifacts, opts BuildOpts) (int, error) {
	format := archives.Zip{
		Compression:          zip.Deflate,
		SelectiveCompression: opts.SelectiveCompression,
	}
	if opts.Store {
		format.Compression = zip.Store
	}

	jobs := make(chan archives.ArchiveAsyncJob)
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return format.ArchiveAsync(ectx, w, jobs)
	})

	var count int
	eg.Go(func() error {
		defer close(jobs)
		for dest, src := range artifacts {
			file, err := sourceFile(root, dest, src)
			if err != nil {
				return err
			}
			opts.Logger.Trace().Str("entry", file.NameInArchive).Str("source", src).Msg("Adding entry")

			result := make(chan error, 1)
			select {
			case jobs <- archives.ArchiveAsyncJob{File: file, Result: result}:
			case <-ectx.Done():
				return ectx.Err()
			}
			select {
			case err := <-result:
				if err != nil {
					return errors.Wrapf(err, "cannot add %q", file.NameInArchive)
				}
			case <-ectx.Done():
				return ectx.Err()
			}
			count++
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

func sourceFile(root *os.Root, dest, src string) (archives.FileInfo, error) {
	name := strings.TrimSuffix(vpath.Clean(dest), "/")
	if name == "" {
		return archives.FileInfo{}, errors.Wrapf(vfs.ErrInvalidArgument, "empty destination for %q", src)
	}
	osName := filepath.FromSlash(src)
	info, err := root.Stat(osName)
	if err != nil {
		return archives.FileInfo{}, errors.Wrapf(err, "cannot read source of %q", name)
	}
	return archives.FileInfo{
		FileInfo:      info,
		NameInArchive: name,
		Open: func() (fs.File, error) {
			return root.Open(osName)
		},
	}, nil
}

// Delete removes the archive. It reports whether a file was removed.
func Delete(archive string) (bool, error) {
	err := os.Remove(archive)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, "cannot delete %q", archive)
	}
	return true, nil
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil && c.err == nil {
		c.err = err
	}
	return n, err
}
