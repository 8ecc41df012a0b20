package vfs

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var _ VirtualFile = fileVF{}

// fileVF serves a directory tree through afero. rel is the slash separated
// path below the tree root, "" for the root itself.
type fileVF struct {
	fsys afero.Fs
	rel  string
}

// ForFile returns the root of the directory tree at dir on the local disk.
func ForFile(dir string) VirtualFile {
	return ForFS(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// ForFS returns the root of fsys.
func ForFS(fsys afero.Fs) VirtualFile {
	return fileVF{fsys: fsys}
}

func (f fileVF) name() string {
	return "/" + f.rel
}

func (f fileVF) stat() (os.FileInfo, bool) {
	info, err := f.fsys.Stat(f.name())
	if err != nil {
		return nil, false
	}
	return info, true
}

func (f fileVF) Name() string {
	if f.rel == "" {
		return ""
	}
	return path.Base(f.rel)
}

func (f fileVF) Parent() VirtualFile {
	if f.rel == "" {
		return nil
	}
	dir := path.Dir(f.rel)
	if dir == "." {
		dir = ""
	}
	return fileVF{fsys: f.fsys, rel: dir}
}

func (f fileVF) IsDirectory() bool {
	ok, err := afero.IsDir(f.fsys, f.name())
	return err == nil && ok
}

func (f fileVF) IsFile() bool {
	info, ok := f.stat()
	return ok && info.Mode().IsRegular()
}

func (f fileVF) Exists() bool {
	ok, err := afero.Exists(f.fsys, f.name())
	return err == nil && ok
}

func (f fileVF) List() ([]VirtualFile, error) {
	if !f.IsDirectory() {
		return []VirtualFile{}, nil
	}
	infos, err := afero.ReadDir(f.fsys, f.name())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list %q", f.name())
	}
	files := make([]VirtualFile, 0, len(infos))
	for _, info := range infos {
		files = append(files, fileVF{fsys: f.fsys, rel: path.Join(f.rel, info.Name())})
	}
	return files, nil
}

func (f fileVF) ListGlob(glob *Glob) ([]string, error) {
	if glob == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "glob is required")
	}
	if !f.IsDirectory() {
		return nil, &fs.PathError{Op: "glob", Path: f.rel, Err: ErrInvalidArgument}
	}
	base := f.name()
	matches := []string{}
	err := afero.Walk(f.fsys, base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); glob.Match(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot walk %q", base)
	}
	return matches, nil
}

func (f fileVF) Child(name string) VirtualFile {
	return fileVF{fsys: f.fsys, rel: strings.TrimPrefix(path.Join(f.rel, name), "/")}
}

func (f fileVF) Length() int64 {
	if info, ok := f.stat(); ok && info.Mode().IsRegular() {
		return info.Size()
	}
	return 0
}

func (f fileVF) LastModified() time.Time {
	if info, ok := f.stat(); ok {
		return info.ModTime()
	}
	return time.Time{}
}

func (f fileVF) CanRead() bool {
	return true
}

func (f fileVF) Open() (io.ReadCloser, error) {
	info, ok := f.stat()
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: f.rel, Err: ErrNotFound}
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: f.rel, Err: ErrIsDirectory}
	}
	file, err := f.fsys.Open(f.name())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", f.rel)
	}
	return file, nil
}

func (f fileVF) URI() *url.URL {
	p := f.name()
	if base, ok := f.fsys.(*afero.BasePathFs); ok {
		p = filepath.ToSlash(afero.FullBaseFsPath(base, p))
	}
	return &url.URL{Scheme: "file", Path: p}
}

func (f fileVF) String() string {
	return f.URI().String()
}
