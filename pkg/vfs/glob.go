package vfs

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Glob is an Ant-style pattern matched against slash separated relative
// paths: "*" matches within a segment, "**" matches any number of segments
// and "?" matches a single character. A pattern ending with "/" matches
// everything below that directory.
type Glob struct {
	pattern string
}

// NewGlob compiles pattern. The empty pattern is valid and matches nothing.
func NewGlob(pattern string) (*Glob, error) {
	p := strings.ReplaceAll(pattern, `\`, "/")
	if strings.HasSuffix(p, "/") {
		p += "**"
	}
	if p != "" && !doublestar.ValidatePattern(p) {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid glob %q", pattern)
	}
	return &Glob{pattern: p}, nil
}

// Match reports whether the relative path name matches the pattern.
func (g *Glob) Match(name string) bool {
	if g == nil || g.pattern == "" {
		return false
	}
	ok, err := doublestar.Match(g.pattern, name)
	return err == nil && ok
}

func (g *Glob) String() string {
	if g == nil {
		return ""
	}
	return g.pattern
}
