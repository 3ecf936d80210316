package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
)

type Context struct {
	context.Context
	kctx   *kong.Context
	stdout io.Writer
	fs     afero.Fs
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&CLI,
		kong.Name("cleargraph"),
		kong.Description("Redraw hand-drawn geometry diagrams as clean SVG."),
		kong.UsageOnError(),
	)
	err := kctx.Run(&Context{
		Context: ctx,
		kctx:    kctx,
		stdout:  os.Stdout,
		fs:      afero.NewOsFs(),
	}, &CLI.Globals)
	kctx.FatalIfErrorf(err)
}
