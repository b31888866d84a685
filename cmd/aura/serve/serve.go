// Package servecmder provides the serve command, which runs the API server
// together with the scan scheduler and worker pool.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonzFong/aura-editor/api"
	"github.com/jasonzFong/aura-editor/api/mcp"
	"github.com/jasonzFong/aura-editor/cmd/aura/stack"
	"github.com/jasonzFong/aura-editor/pkg/config"
	"github.com/jasonzFong/aura-editor/pkg/logger"
	"github.com/jasonzFong/aura-editor/pkg/schedule"
	"github.com/jasonzFong/aura-editor/pkg/scanner"
	"github.com/jasonzFong/aura-editor/pkg/worker"
)

type serveCommander struct {
	listen          string
	storageDriver   string
	sqlitePath      string
	postgresDSN     string
	provider        string
	model           string
	baseURL         string
	onOracleFailure string
	tick            string
	workers         uint
	jsonLogs        bool
	logFile         string

	logger *slog.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagOracleProvider,
	config.FlagOracleModel,
	config.FlagOracleBaseURL,
	config.FlagOnOracleFailure,
	config.FlagScanTick,
	config.FlagScanWorkers,
}

const serveLongDesc string = `Run the aura server.

Starts the HTTP API, the MCP endpoint, the background memory scanner and the
daily almanac job in one process. Flags override config.toml values, which
override defaults.

Changing scanner.on_oracle_failure in config.toml while the server runs
takes effect without a restart.`

const serveShortDesc string = "Run the aura server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := stack.Resolve(cmd, serveFlags...)
			if err != nil {
				return err
			}
			closeLog, err := cmder.setupLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			return cmder.run(cmd.Context(), resolved)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagOracleBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagOnOracleFailure, &cmder.onOracleFailure)
	config.AddStringFlag(cmd, config.Flags, config.FlagScanTick, &cmder.tick)
	config.AddUintFlag(cmd, config.Flags, config.FlagScanWorkers, &cmder.workers)
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Log JSON records instead of colorized text")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON debug logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, resolved *stack.Resolved) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := resolved.Config

	s, err := stack.Open(ctx, cfg, resolved.Dir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	pool, err := worker.NewPool(&worker.Config{
		Scanner:    s.Scanner,
		NumWorkers: cfg.Scanner.Workers,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating scan worker pool: %w", err)
	}
	defer pool.Close()

	scanTick, err := cfg.ScanTick()
	if err != nil {
		return err
	}
	if !cfg.Scanner.Enabled {
		scanTick = -1
		c.logger.Info("background scanning disabled")
	}

	schedCfg := schedule.Config{
		Users:    s.Store,
		Enqueuer: pool,
		ScanTick: scanTick,
		RunAt:    cfg.Almanac.RunAt,
		Logger:   c.logger,
	}
	if s.Almanac != nil {
		schedCfg.Almanac = s.Almanac
	}
	sched, err := schedule.New(schedCfg)
	if err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	services := api.Services{
		Users:    s.Store,
		Memory:   s.Memory,
		Comments: s.Comments,
		Analysis: s.Analysis,
		Almanac:  s.Almanac,
		Scans:    pool,
	}
	if cfg.MCP.Enabled {
		services.MCP, err = mcp.NewServer(mcp.Config{Memory: s.Memory, Logger: c.logger})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
	}

	server, err := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, services, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.watchPolicy(resolved.Viper, s.Scanner)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	c.logger.Info("aura server started",
		"listen", cfg.API.Listen,
		"storage", cfg.Storage.Driver,
		"oracle", cfg.Oracle.Provider,
		"scan_tick", scanTick.String(),
		"workers", cfg.Scanner.Workers,
		"on_oracle_failure", string(s.Scanner.Policy()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownStart := time.Now()
	if err := server.Shutdown(); err != nil {
		c.logger.Warn("API server shutdown failed", "error", err)
	}
	c.logger.Debug("API server stopped", "took", time.Since(shutdownStart).String())
	return nil
}

// setupLogger builds the console logger and, with --log-file, tees every
// record as JSON into that file as well.
func (c *serveCommander) setupLogger(cmd *cobra.Command) (func(), error) {
	console := stack.Logger(cmd, logger.WithJSON(c.jsonLogs), logger.WithWriter(os.Stdout))
	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	c.logger = logger.Multi(console, logger.New(
		logger.WithJSON(true),
		logger.WithDebug(true),
		logger.WithSource(true),
		logger.WithWriter(f),
	))
	return func() { _ = f.Close() }, nil
}

// watchPolicy applies edits of scanner.on_oracle_failure in config.toml to
// the running orchestrator. Invalid edits are logged and ignored.
func (c *serveCommander) watchPolicy(v *viper.Viper, orch *scanner.Orchestrator) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		policy, err := scanner.ParsePolicy(v.GetString("scanner.on_oracle_failure"))
		if err != nil {
			c.logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}
		if policy == orch.Policy() {
			return
		}

		orch.SetPolicy(policy)
		c.logger.Info("oracle failure policy changed", "policy", string(policy))
	})
	v.WatchConfig()
}
