package app

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/crazy-max/zipstore/pkg/config"
	"github.com/pkg/errors"
)

// App represents an active zipstore command
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	meta   config.Meta
	cli    config.Cli
	out    io.Writer
}

// New creates new zipstore instance
func New(meta config.Meta, cli config.Cli) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		ctx:    ctx,
		cancel: cancel,
		meta:   meta,
		cli:    cli,
		out:    os.Stdout,
	}, nil
}

// Start runs command, as reported by the command line parser
func (c *App) Start(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New("no command given")
	}
	switch fields[0] {
	case "archive":
		return c.archive(c.cli.Archive)
	case "ls":
		return c.ls(c.cli.Ls)
	case "cat":
		return c.cat(c.cli.Cat)
	case "glob":
		return c.glob(c.cli.Glob)
	case "extract":
		return c.extract(c.cli.Extract)
	case "rm":
		return c.rm(c.cli.Rm)
	default:
		return errors.Errorf("unknown command %q", fields[0])
	}
}

// Close interrupts the running command
func (c *App) Close() {
	c.cancel()
}
