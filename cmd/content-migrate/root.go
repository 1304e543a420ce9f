package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/David-Botos/content-migrate/pkg/config"
	"github.com/David-Botos/content-migrate/pkg/connector"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// app carries what every command needs. Tests replace the I/O and the store.
type app struct {
	in         io.Reader
	out        io.Writer
	isTerminal func() bool
	openStore  func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.RecordStore, error)

	envFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *zap.Logger
}

func newApp() *app {
	return &app{
		in:         os.Stdin,
		out:        os.Stdout,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		openStore: func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.RecordStore, error) {
			return connector.NewConnectorFactory(cfg, logger).CreateStore(ctx)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "content-migrate",
		Short:         "Migrate legacy SQL dump content into the new schema and clean it up",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.SetOut(a.out)

	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Load environment variables from this file when it exists")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (console, json); overrides LOG_FORMAT")

	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newVerifyCmd(a))
	cmd.AddCommand(newGeoCmd(a))
	cmd.AddCommand(newAddressCmd(a))
	return cmd
}

func (a *app) setup() error {
	if err := config.LoadEnvFiles(a.envFile); err != nil {
		return withCode(exitUsage, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid configuration: %w", err))
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if a.logFormat != "" {
		cfg.LogFormat = strings.ToLower(a.logFormat)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return withCode(exitUsage, err)
	}
	zap.ReplaceGlobals(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

// parseEntities resolves --only values; empty means the configured list
func (a *app) parseEntities(only []string) ([]model.EntityType, error) {
	if len(only) == 0 {
		return a.cfg.Entities, nil
	}
	out := make([]model.EntityType, 0, len(only))
	for _, name := range only {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			entity, err := model.ParseEntityType(part)
			if err != nil {
				return nil, withCode(exitUsage, err)
			}
			out = append(out, entity)
		}
	}
	return out, nil
}

// Execute runs the CLI and exits with the mapped status code
func Execute() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
