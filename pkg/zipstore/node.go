package zipstore

import (
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ vfs.VirtualFile = Node{}

// Node is a file or directory inside an archive. It only holds the archive
// location and the path, so two nodes are equal when both match.
type Node struct {
	archive string
	path    string
}

// Root returns the root directory of the archive at archive.
func Root(archive string) Node {
	return Node{archive: archive}
}

// At returns the node at p inside archive. p is cleaned first; whether it
// denotes a directory is up to the caller.
func At(archive, p string) Node {
	return Node{archive: archive, path: vpath.Clean(p)}
}

// Archive returns the location of the zip file.
func (n Node) Archive() string {
	return n.archive
}

// Path returns the path inside the archive, "" for the root.
func (n Node) Path() string {
	return n.path
}

// Equal reports whether other is a node of the same archive at the same path.
func (n Node) Equal(other vfs.VirtualFile) bool {
	o, ok := other.(Node)
	return ok && o == n
}

func (n Node) scanner() Scanner {
	return NewScanner(n.archive)
}

func (n Node) logger() zerolog.Logger {
	return log.With().Str("archive", n.archive).Str("path", n.path).Logger()
}

// degraded logs a scan failure of a metadata query.
func (n Node) degraded(op string, err error) {
	logger := n.logger()
	logger.Warn().Err(err).Msgf("Cannot %s, archive is unreadable", op)
}

func (n Node) Name() string {
	return vpath.Name(n.path)
}

func (n Node) Parent() vfs.VirtualFile {
	parent, ok := vpath.Parent(n.path)
	if !ok {
		return nil
	}
	return Node{archive: n.archive, path: parent}
}

func (n Node) IsDirectory() bool {
	ok, err := n.scanner().IsDirectory(n.path)
	if err != nil {
		n.degraded("check directory", err)
		return false
	}
	return ok
}

func (n Node) IsFile() bool {
	ok, err := n.scanner().IsFile(n.path)
	if err != nil {
		n.degraded("check file", err)
		return false
	}
	return ok
}

func (n Node) Exists() bool {
	ok, err := n.scanner().Exists(n.path)
	if err != nil {
		n.degraded("check existence", err)
		return false
	}
	return ok
}

// List returns the immediate children. An unreadable archive lists as empty.
func (n Node) List() ([]vfs.VirtualFile, error) {
	paths, err := n.scanner().List(n.path)
	if err != nil {
		n.degraded("list", err)
		return []vfs.VirtualFile{}, nil
	}
	children := make([]vfs.VirtualFile, 0, len(paths))
	for _, p := range paths {
		children = append(children, Node{archive: n.archive, path: p})
	}
	return children, nil
}

func (n Node) ListGlob(glob *vfs.Glob) ([]string, error) {
	return n.scanner().Glob(n.path, glob)
}

// Child returns the directory name below n if the archive has one, and the
// file otherwise. The returned file may not exist.
func (n Node) Child(name string) vfs.VirtualFile {
	name = strings.Trim(name, "/")
	if name == "" {
		return n
	}
	p := vpath.Join(n.path, name)
	dir := Node{archive: n.archive, path: p + "/"}
	if dir.IsDirectory() {
		return dir
	}
	return Node{archive: n.archive, path: p}
}

func (n Node) entry() (Entry, bool) {
	e, ok, err := n.scanner().Entry(n.path)
	if err != nil {
		n.degraded("read entry", err)
		return Entry{}, false
	}
	return e, ok
}

func (n Node) Length() int64 {
	if e, ok := n.entry(); ok {
		return int64(e.Size)
	}
	return 0
}

func (n Node) LastModified() time.Time {
	if e, ok := n.entry(); ok {
		return e.Modified
	}
	return time.Time{}
}

func (n Node) CanRead() bool {
	return true
}

// Open streams the content of the entry. The returned *Stream must be closed.
func (n Node) Open() (io.ReadCloser, error) {
	s, err := openStream(n.archive, n.path, n.logger())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// URI returns the path as a relative zip URI, each segment escaped.
func (n Node) URI() *url.URL {
	segments := strings.Split(n.path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return &url.URL{Scheme: "zip", Opaque: "./" + strings.Join(segments, "/")}
}

func (n Node) String() string {
	return filepath.ToSlash(n.archive) + "!/" + n.path
}
