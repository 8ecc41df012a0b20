package vfs

import (
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"time"
)

// VirtualFile is a file or directory in a read-only tree.
type VirtualFile interface {
	fmt.Stringer

	// Name returns the last path segment, empty for the root.
	Name() string
	// Parent returns the enclosing directory or nil for the root.
	Parent() VirtualFile
	IsDirectory() bool
	IsFile() bool
	Exists() bool
	// List returns the immediate children of a directory.
	List() ([]VirtualFile, error)
	// ListGlob returns the slash separated paths, relative to this
	// directory, of all files below it matching glob.
	ListGlob(glob *Glob) ([]string, error)
	// Child returns the named child. The child may not exist.
	Child(name string) VirtualFile
	// Length returns the size in bytes, 0 if unknown.
	Length() int64
	// LastModified returns the modification time, the zero time if unknown.
	LastModified() time.Time
	CanRead() bool
	// Open returns the file content. The caller must close it.
	Open() (io.ReadCloser, error)
	URI() *url.URL
}

// ListPattern compiles pattern and lists the matching files below vf.
func ListPattern(vf VirtualFile, pattern string) ([]string, error) {
	glob, err := NewGlob(pattern)
	if err != nil {
		return nil, err
	}
	return vf.ListGlob(glob)
}

// SortByName sorts files by name, directories and files mixed.
func SortByName(files []VirtualFile) {
	slices.SortFunc(files, func(a, b VirtualFile) int {
		return strings.Compare(a.Name(), b.Name())
	})
}

// Walk calls fn for vf and every file and directory below it, depth first
// in name order. Returning an error from fn stops the walk.
func Walk(vf VirtualFile, fn func(VirtualFile) error) error {
	if err := fn(vf); err != nil {
		return err
	}
	if !vf.IsDirectory() {
		return nil
	}
	children, err := vf.List()
	if err != nil {
		return err
	}
	SortByName(children)
	for _, child := range children {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}
