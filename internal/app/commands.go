package app

import (
	"fmt"
	"io"
	"os"

	"github.com/crazy-max/zipstore/pkg/config"
	"github.com/crazy-max/zipstore/pkg/extractor"
	"github.com/crazy-max/zipstore/pkg/vfs"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/crazy-max/zipstore/pkg/zipstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func (c *App) archive(cmd config.ArchiveCmd) error {
	logger := log.With().Str("archive", cmd.Archive).Logger()

	mapping, err := cmd.Mapping()
	if err != nil {
		return err
	}
	if len(mapping) == 0 {
		files, err := vfs.ListPattern(vfs.ForFile(cmd.Workspace), cmd.Pattern)
		if err != nil {
			return errors.Wrapf(err, "cannot list workspace %q", cmd.Workspace)
		}
		for _, f := range files {
			mapping[f] = f
		}
	}
	if _, err := os.Stat(cmd.Archive); err == nil {
		logger.Warn().Msg("Replacing existing archive")
	}

	res, err := zipstore.Build(c.ctx, cmd.Archive, cmd.Workspace, zipstore.Mapping(mapping), zipstore.BuildOpts{
		Logger:               logger,
		Store:                cmd.Store,
		SelectiveCompression: cmd.SelectiveCompression,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "%s %d entries %d bytes %s\n", cmd.Archive, res.Entries, res.Size, res.Digest)
	return err
}

func (c *App) ls(cmd config.LsCmd) error {
	dir := directory(cmd.Archive, cmd.Path)
	if !dir.IsDirectory() {
		return &os.PathError{Op: "ls", Path: cmd.Path, Err: vfs.ErrNotFound}
	}
	if !cmd.Recursive {
		children, err := dir.List()
		if err != nil {
			return err
		}
		vfs.SortByName(children)
		for _, child := range children {
			if err := c.printNode(child); err != nil {
				return err
			}
		}
		return nil
	}
	return vfs.Walk(dir, func(vf vfs.VirtualFile) error {
		if vf == vfs.VirtualFile(dir) {
			return nil
		}
		return c.printNode(vf)
	})
}

func (c *App) printNode(vf vfs.VirtualFile) error {
	node := vf.(zipstore.Node)
	if vf.IsDirectory() {
		_, err := fmt.Fprintf(c.out, "%s\n", node.Path())
		return err
	}
	_, err := fmt.Fprintf(c.out, "%s\t%d\t%s\n", node.Path(), vf.Length(), vf.LastModified().UTC().Format("2006-01-02T15:04:05Z"))
	return err
}

func (c *App) cat(cmd config.CatCmd) error {
	rc, err := zipstore.At(cmd.Archive, cmd.Path).Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(c.out, rc)
	return err
}

func (c *App) glob(cmd config.GlobCmd) error {
	files, err := vfs.ListPattern(directory(cmd.Archive, cmd.Path), cmd.Pattern)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(c.out, f); err != nil {
			return err
		}
	}
	return nil
}

func (c *App) extract(cmd config.ExtractCmd) error {
	if _, err := os.Stat(cmd.Dist); err == nil && cmd.RmDist {
		if err := os.RemoveAll(cmd.Dist); err != nil {
			return errors.Wrapf(err, "failed to remove dist folder %q", cmd.Dist)
		}
	}
	if err := os.MkdirAll(cmd.Dist, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create dist folder %q", cmd.Dist)
	}

	count, err := extractor.Extract(cmd.Archive, cmd.Dist, extractor.ExtractOpts{
		Context:         c.ctx,
		Logger:          log.With().Str("archive", cmd.Archive).Logger(),
		Includes:        cmd.Includes,
		ContinueOnError: cmd.ContinueOnError,
	})
	if err != nil {
		return err
	}
	log.Info().Int("files", count).Str("dist", cmd.Dist).Msg("Archive extracted")
	return nil
}

func (c *App) rm(cmd config.RmCmd) error {
	removed, err := zipstore.Delete(cmd.Archive)
	if err != nil {
		return err
	}
	if !removed {
		log.Warn().Str("archive", cmd.Archive).Msg("Archive does not exist")
	}
	return nil
}

// directory returns the folder p of archive, the root when p is empty.
func directory(archive, p string) zipstore.Node {
	p = vpath.Clean(p)
	if !vpath.IsDirLike(p) {
		p += "/"
	}
	return zipstore.At(archive, p)
}
