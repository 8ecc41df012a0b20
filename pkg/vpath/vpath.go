// Package vpath holds the path conventions shared by every virtual file:
// forward slashes, no leading slash, "" for the root and a trailing slash for
// directory-shaped paths.
package vpath

import "strings"

// Root is the path of the root directory.
const Root = ""

// IsDirLike reports whether p is directory-shaped.
func IsDirLike(p string) bool {
	return p == Root || strings.HasSuffix(p, "/")
}

// Parent returns the directory enclosing p. The root has no parent.
//
// For a directory-shaped path the trailing slash is ignored, so the parent of
// "a/b/" is "a/" and not "a/b/" itself.
func Parent(p string) (string, bool) {
	if p == Root {
		return "", false
	}
	p = strings.TrimSuffix(p, "/")
	last := strings.LastIndexByte(p, '/')
	if last < 0 {
		return Root, true
	}
	return p[:last+1], true
}

// Name returns the last non-empty segment of p.
func Name(p string) string {
	p = strings.TrimSuffix(p, "/")
	return p[strings.LastIndexByte(p, '/')+1:]
}

// Join appends name to the directory dir. Leading and trailing slashes of
// name are dropped.
func Join(dir, name string) string {
	name = strings.Trim(name, "/")
	if dir != Root && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + name
}

// Clean converts a user supplied path to the canonical form:
//   - backslashes become forward slashes: `dir\file` → "dir/file"
//   - leading slashes are stripped: "/dir/file" → "dir/file"
//   - consecutive slashes collapse: "dir//file" → "dir/file"
//   - a trailing slash is kept: "dir/" → "dir/"
//
// Dot segments are preserved as is.
func Clean(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	dir := strings.HasSuffix(p, "/")

	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return Root
	}
	p = strings.Join(result, "/")
	if dir {
		p += "/"
	}
	return p
}
