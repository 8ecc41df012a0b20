package extractor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crazy-max/zipstore/pkg/zipstore"
	"github.com/klauspost/compress/zip"
	"github.com/mholt/archives"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ExtractOpts holds extract options
type ExtractOpts struct {
	Context  context.Context
	Logger   zerolog.Logger
	Includes []string
	// ContinueOnError logs failing entries and extracts the others.
	ContinueOnError bool
}

// Extract restores the entries of archive below dest and returns the number
// of files written.
func Extract(archive string, dest string, opts ExtractOpts) (int, error) {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	opts.Logger.Info().Msgf("Extracting archive")

	dt, err := os.Open(archive)
	if err != nil {
		return 0, errors.Wrap(err, "cannot open archive")
	}
	defer dt.Close()

	var pathsInArchive []string
	for _, inc := range opts.Includes {
		inc = strings.TrimPrefix(filepath.ToSlash(inc), "/")
		if len(inc) > 0 {
			pathsInArchive = append(pathsInArchive, inc)
		}
	}

	var count int
	format := archives.Zip{ContinueOnError: opts.ContinueOnError}
	err = format.Extract(opts.Context, dt, func(ctx context.Context, f archives.FileInfo) error {
		name := f.NameInArchive
		if hdr, ok := f.Header.(zip.FileHeader); ok {
			name = zipstore.EntryName(&hdr)
		}
		if !fileIsIncluded(pathsInArchive, name) {
			return nil
		}
		rel := filepath.FromSlash(strings.TrimSuffix(name, "/"))
		if !filepath.IsLocal(rel) {
			return errors.Errorf("illegal entry name %q", name)
		}

		if f.FileInfo.IsDir() {
			opts.Logger.Trace().Msgf("Extracting %s", name)
		} else {
			opts.Logger.Debug().Msgf("Extracting %s", name)
		}

		path := filepath.Join(dest, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		switch {
		case f.FileInfo.IsDir():
			return os.MkdirAll(path, 0o755)
		case f.FileInfo.Mode().IsRegular():
			if err := writeFile(ctx, path, f); err != nil {
				return err
			}
			count++
			return os.Chtimes(path, f.ModTime(), f.ModTime())
		default:
			return errors.Errorf("cannot handle file mode: %v", f.FileInfo.Mode())
		}
	})
	if err != nil {
		return count, errors.Wrap(err, "cannot extract archive")
	}
	return count, nil
}

func fileIsIncluded(filenameList []string, filename string) bool {
	// include all files if there is no specific list
	if len(filenameList) == 0 {
		return true
	}
	for _, fn := range filenameList {
		// exact matches are of course included
		if filename == fn {
			return true
		}
		// also consider the file included if its parent folder/path is in the list
		if strings.HasPrefix(filename, strings.TrimSuffix(fn, "/")+"/") {
			return true
		}
	}
	return false
}

func writeFile(ctx context.Context, path string, f archives.FileInfo) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	if err = w.Chmod(mode); err != nil {
		return err
	}

	_, err = io.Copy(w, readerContext(ctx, r))
	return err
}

type reader struct {
	ctx context.Context
	r   io.Reader
}

func readerContext(ctx context.Context, r io.Reader) io.Reader {
	return reader{ctx, r}
}

func (r reader) Read(p []byte) (int, error) {
	err := r.ctx.Err()
	if err != nil {
		return 0, err
	}
	n, err := r.r.Read(p)
	if err != nil {
		return n, err
	}
	return n, r.ctx.Err()
}
