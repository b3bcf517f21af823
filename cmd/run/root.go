package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-sandbox/config"
	"github.com/wippyai/wasm-sandbox/engine"
	"github.com/wippyai/wasm-sandbox/host"
)

// app is the state shared by all subcommands once the root command has
// loaded configuration.
type app struct {
	configPath string
	logLevel   string

	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
	engine   *engine.Engine
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "run",
		Short:             "Run WebAssembly guests in an isolated memory arena",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newExecCmd(a),
		newStatsCmd(a),
		newInspectCmd(a),
		newTUICmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			path = config.DefaultPath
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, closeLog, err := cfg.Log.Build(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	host.SetLogger(log.Named("host"))
	engine.SetLogger(log.Named("engine"))

	ec := cfg.Engine.ToEngine(log.Named("engine"))
	e, err := engine.New(&ec)
	if err != nil {
		_ = closeLog()
		return err
	}

	a.cfg, a.log, a.closeLog, a.engine = cfg, log, closeLog, e
	log.Debug("configuration loaded",
		zap.String("file", path),
		zap.Uint32("max_pages", cfg.Engine.MaxPages),
		zap.Bool("compiler", cfg.Engine.Compiler))
	return nil
}

// execute runs the command tree and then releases the logger. cobra skips
// post-run hooks when a command fails, so the close happens here.
func execute(a *app, root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

// close flushes and closes the log outputs opened by setup.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	closeLog := a.closeLog
	a.closeLog = nil
	return closeLog()
}

// callContext applies the configured per-call timeout.
func (a *app) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Engine.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Engine.Timeout)
	}
	return context.WithCancel(ctx)
}

func readModule(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--module is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return data, nil
}
