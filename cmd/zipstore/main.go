package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/crazy-max/zipstore/internal/app"
	"github.com/crazy-max/zipstore/internal/logging"
	"github.com/crazy-max/zipstore/pkg/config"
	"github.com/rs/zerolog/log"
)

var (
	zipstore *app.App
	cli      config.Cli
	version  = "dev"
	meta     = config.Meta{
		ID:     "zipstore",
		Name:   "Zipstore",
		Desc:   "Store build artifacts in a single zip archive and browse them",
		URL:    "https://github.com/crazy-max/zipstore",
		Author: "CrazyMax",
	}
)

func main() {
	var err error
	runtime.GOMAXPROCS(runtime.NumCPU())

	meta.Version = version
	meta.UserAgent = fmt.Sprintf("%s/%s go/%s %s", meta.ID, meta.Version, runtime.Version()[2:], strings.Title(runtime.GOOS)) //nolint:staticcheck // ignoring "SA1019: strings.Title is deprecated", as for our use we don't need full unicode support

	kctx := kong.Parse(&cli,
		kong.Name(meta.ID),
		kong.Description(fmt.Sprintf("%s. More info: %s", meta.Desc, meta.URL)),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	// Logging
	logging.Configure(cli)

	// Init
	if zipstore, err = app.New(meta, cli); err != nil {
		log.Fatal().Err(err).Msg("cannot initialize zipstore")
	}

	// Handle os signals
	channel := make(chan os.Signal, 1)
	signal.Notify(channel, os.Interrupt, SIGTERM)
	go func() {
		sig := <-channel
		log.Warn().Msgf("caught signal %v", sig)
		zipstore.Close()
	}()

	// Start
	if err = zipstore.Start(kctx.Command()); err != nil {
		log.Fatal().Stack().Err(err).Send()
	}
}
