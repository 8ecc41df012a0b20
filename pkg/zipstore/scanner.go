package zipstore

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Entry describes one archive entry.
type Entry struct {
	Name     string
	Size     uint64
	Modified time.Time
	// Dir is set for explicit directory entries, whose name ends with "/".
	Dir bool
}

// EntryName returns the name of hdr as UTF-8. Names written without the
// UTF-8 flag that do not decode as UTF-8 come from older writers using the
// IBM PC code page.
func EntryName(hdr *zip.FileHeader) string {
	if !hdr.NonUTF8 || utf8.ValidString(hdr.Name) {
		return hdr.Name
	}
	name, err := charmap.CodePage437.NewDecoder().String(hdr.Name)
	if err != nil {
		return hdr.Name
	}
	return name
}

// Scanner answers path queries against the entry list of one archive. It
// holds no state besides the archive location.
type Scanner struct {
	archive string
}

// NewScanner returns a scanner for the zip file at archive.
func NewScanner(archive string) Scanner {
	return Scanner{archive: archive}
}

// Entries returns every entry of the archive. An absent archive has no
// entries.
func (s Scanner) Entries() ([]Entry, error) {
	rc, err := openArchive(s.archive)
	if err != nil || rc == nil {
		return nil, err
	}
	defer rc.Close()

	entries := make([]Entry, 0, len(rc.File))
	for _, f := range rc.File {
		name := EntryName(&f.FileHeader)
		entries = append(entries, Entry{
			Name:     name,
			Size:     f.UncompressedSize64,
			Modified: f.Modified,
			Dir:      strings.HasSuffix(name, "/"),
		})
	}
	return entries, nil
}

// IsDirectory reports whether p is directory-shaped and at least one entry
// lives below it.
func (s Scanner) IsDirectory(p string) (bool, error) {
	if !vpath.IsDirLike(p) {
		return false, nil
	}
	entries, err := s.Entries()
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(entries, func(e Entry) bool {
		return strings.HasPrefix(e.Name, p)
	}), nil
}

// IsFile reports whether an entry is named exactly p.
func (s Scanner) IsFile(p string) (bool, error) {
	_, ok, err := s.Entry(p)
	return ok, err
}

// Exists reports whether p is a directory or a file, depending on its shape.
func (s Scanner) Exists(p string) (bool, error) {
	if vpath.IsDirLike(p) {
		return s.IsDirectory(p)
	}
	return s.IsFile(p)
}

// Entry returns the entry named exactly p. Directory-shaped paths never
// match.
func (s Scanner) Entry(p string) (Entry, bool, error) {
	if vpath.IsDirLike(p) {
		return Entry{}, false, nil
	}
	entries, err := s.Entries()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.Name == p {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// List returns the sorted paths of the immediate children of the directory
// p. Subdirectories end with "/".
func (s Scanner) List(p string) ([]string, error) {
	if !vpath.IsDirLike(p) {
		return []string{}, nil
	}
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	children := []string{}
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name, p)
		if !ok || rest == "" {
			continue
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i+1]
		}
		child := p + rest
		if _, ok := seen[child]; ok {
			continue
		}
		seen[child] = struct{}{}
		children = append(children, child)
	}
	slices.Sort(children)
	return children, nil
}

// Glob returns the names, relative to the directory p, of the files below p
// matching glob.
func (s Scanner) Glob(p string, glob *vfs.Glob) ([]string, error) {
	if glob == nil {
		return nil, errors.Wrap(vfs.ErrInvalidArgument, "glob is required")
	}
	if !vpath.IsDirLike(p) {
		return nil, &fs.PathError{Op: "glob", Path: p, Err: vfs.ErrInvalidArgument}
	}
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, e := range entries {
		if e.Dir {
			continue
		}
		if rel, ok := strings.CutPrefix(e.Name, p); ok && rel != "" && glob.Match(rel) {
			matches = append(matches, rel)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

// openArchive opens the zip file at archive. It returns nil and no error
// when the file does not exist.
func openArchive(archive string) (*zip.ReadCloser, error) {
	rc, err := zip.OpenReader(archive)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		scansTotal.WithLabelValues("absent").Inc()
		return nil, nil
	case err != nil:
		scansTotal.WithLabelValues("error").Inc()
		return nil, &fs.PathError{Op: "scan", Path: archive, Err: fmt.Errorf("%w: %w", vfs.ErrIOFailure, err)}
	}
	scansTotal.WithLabelValues("ok").Inc()
	return rc, nil
}
