package zipstore

import (
	"fmt"
	"io"
	"io/fs"
	"runtime"
	"sync"

	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Stream reads one archive entry. It owns its own handle on the archive,
// released by Close.
type Stream struct {
	h       *handle
	cleanup runtime.Cleanup
}

type handle struct {
	mu      sync.Mutex
	archive *zip.ReadCloser
	entry   io.ReadCloser
	closed  bool

	logger zerolog.Logger
	// opened records the stack of the Open call for leak reports.
	opened error
}

func openStream(archive, p string, logger zerolog.Logger) (*Stream, error) {
	rc, err := openArchive(archive)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", p)
	}
	if rc == nil {
		return nil, &fs.PathError{Op: "open", Path: p, Err: vfs.ErrNotFound}
	}
	if vpath.IsDirLike(p) {
		rc.Close()
		return nil, &fs.PathError{Op: "open", Path: p, Err: vfs.ErrIsDirectory}
	}

	for _, f := range rc.File {
		if EntryName(&f.FileHeader) != p {
			continue
		}
		entry, err := f.Open()
		if err != nil {
			rc.Close()
			return nil, &fs.PathError{Op: "open", Path: p, Err: fmt.Errorf("%w: %w", vfs.ErrIOFailure, err)}
		}
		return newStream(rc, entry, logger, errors.Errorf("stream on %q opened", p)), nil
	}

	rc.Close()
	return nil, &fs.PathError{Op: "open", Path: p, Err: vfs.ErrNotFound}
}

func newStream(archive *zip.ReadCloser, entry io.ReadCloser, logger zerolog.Logger, opened error) *Stream {
	s := &Stream{h: &handle{
		archive: archive,
		entry:   entry,
		logger:  logger,
		opened:  opened,
	}}
	s.cleanup = runtime.AddCleanup(s, releaseLeaked, s.h)
	streamsOpenedTotal.Inc()
	return s
}

func (s *Stream) Read(p []byte) (int, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	if s.h.closed {
		return 0, fs.ErrClosed
	}
	return s.h.entry.Read(p)
}

// Close releases the archive handle. Closing twice is a no-op.
func (s *Stream) Close() error {
	s.cleanup.Stop()
	return s.h.close()
}

func (h *handle) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	err := h.entry.Close()
	if cerr := h.archive.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "cannot close archive")
}

// releaseLeaked runs once the garbage collector found an unclosed Stream.
func releaseLeaked(h *handle) {
	streamsLeakedTotal.Inc()
	h.logger.Warn().Stack().Err(h.opened).Msg("Stream was never closed, releasing archive handle")
	if err := h.close(); err != nil {
		h.logger.Warn().Err(err).Msg("Cannot release leaked stream")
	}
}
