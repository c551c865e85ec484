package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/markers-extractor/cmd"
	"github.com/lepinkainen/markers-extractor/config"
	"github.com/lepinkainen/markers-extractor/logging"
	"github.com/lepinkainen/markers-extractor/types"
)

var Version = "dev"

// Globals are flags shared by every command
type Globals struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"info" env:"MARKERS_LOG_LEVEL"`
	LogJSON  bool   `name:"log-json" help:"Log as JSON"`
	LogFile  string `help:"Write logs to this file instead of stderr" type:"path"`
	Config   string `help:"YAML settings file" type:"existingfile" env:"MARKERS_CONFIG"`
}

type CLI struct {
	Globals

	Export  cmd.ExportCmd  `cmd:"" help:"Export markers to images and a manifest"`
	Check   cmd.CheckCmd   `cmd:"" help:"Validate marker IDs without exporting"`
	Probe   cmd.ProbeCmd   `cmd:"" help:"Show duration, size and frame rate of a media file"`
	Similar cmd.SimilarCmd `cmd:"" help:"Find perceptually similar images in an export"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("markers-extractor"),
		kong.Description("Extract marker thumbnails and manifests from video"),
		kong.UsageOnError(),
	)

	appCtx, cleanup, err := newAppContext(cli.Globals)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(appCtx)
	cleanup()
	ctx.FatalIfErrorf(err)
}

// newAppContext builds the logger, settings and interrupt-aware context
// every command runs with.
func newAppContext(g Globals) (*types.AppContext, func(), error) {
	output := "stderr"
	if g.LogFile != "" {
		output = g.LogFile
	}
	logger, err := logging.NewLogger(g.LogLevel, g.LogJSON, output)
	if err != nil {
		return nil, nil, err
	}

	settings, err := config.Load(g.Config)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cleanup := func() {
		stop()
		_ = logger.Sync()
	}

	return &types.AppContext{
		Version:  Version,
		Logger:   logger,
		Settings: settings,
		Ctx:      runCtx,
	}, cleanup, nil
}
