package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cleargraph/internal/app"
	"cleargraph/internal/config"
	"cleargraph/internal/digitize"
	"cleargraph/internal/intake"
	"cleargraph/internal/logger"

	"github.com/spf13/afero"
)

const defaultConfigPath = "configs/config.yaml"

var CLI struct {
	Globals

	Serve    Serve    `cmd:"" help:"run the web UI and JSON API"`
	Digitize Digitize `cmd:"" help:"digitize one image and write the SVG"`
}

type Globals struct {
	Config   string `help:"config file; a missing default file means built-in defaults" default:"configs/config.yaml" env:"CLEARGRAPH_CONFIG"`
	LogLevel string `help:"override app.log_level" name:"log-level"`
}

// load reads the config and points the loggers at their files. The returned closer
// must run before exit.
func (g *Globals) load(console io.Writer) (*config.Config, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if g.Config == defaultConfigPath {
		cfg, err = config.LoadOptional(g.Config)
	} else {
		cfg, err = config.Load(g.Config)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.App.LogLevel = g.LogLevel
	}
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	logFile, err := setupLogOutput(cfg.App.LogPath, console)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		closers = append(closers, logFile)
	}
	logger.SetLLMWriter(nil)
	if cfg.App.LLMLog != "" {
		f, err := setupLLMLogOutput(cfg.App.LLMLog)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open llm log: %w", err)
		}
		if f != nil {
			closers = append(closers, f)
		}
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.EnableLLMPayloadDump(cfg.App.LLMDump)
	logger.Infof("config loaded (env=%s, provider=%s, model=%s)", cfg.App.Env, cfg.AI.Provider, cfg.AI.Model)
	return cfg, closeAll, nil
}

type Serve struct {
	Addr string `help:"override app.http_addr"`
}

func (s *Serve) Run(ctx *Context, g *Globals) error {
	cfg, closeLogs, err := g.load(os.Stdout)
	if err != nil {
		return err
	}
	defer closeLogs()
	if s.Addr != "" {
		cfg.App.HTTPAddr = s.Addr
	}
	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}

type Digitize struct {
	Image  string `arg:"" help:"image file to digitize"`
	Output string `help:"where to write the SVG, defaults to cleargraph-<unix-ms>.svg" short:"o"`
}

func (d *Digitize) Run(ctx *Context, g *Globals) error {
	cfg, closeLogs, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLogs()
	digitizer, err := app.NewDigitizer(cfg)
	if err != nil {
		return err
	}
	if !digitizer.Ready() {
		return digitize.ErrMissingAPIKey
	}
	f, err := ctx.fs.Open(d.Image)
	if err != nil {
		return err
	}
	img, err := intake.Read(f, "", cfg.Upload.MaxBytes)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", d.Image, err)
	}
	callCtx := context.Context(ctx)
	if timeout := cfg.AI.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := digitizer.Digitize(callCtx, img)
	if err != nil {
		return err
	}
	out := d.Output
	if out == "" {
		out = fmt.Sprintf("cleargraph-%d.svg", time.Now().UnixMilli())
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := ctx.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := afero.WriteFile(ctx.fs, out, []byte(res.SVGContent), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(ctx.stdout, "%s\n\n%s\n\nwrote %s\n", res.Title, res.Explanation, out)
	return nil
}

func setupLogOutput(path string, console io.Writer) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		log.SetOutput(console)
		logger.SetOutput(console)
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(console, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

func setupLLMLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetLLMWriter(f)
	return f, nil
}
