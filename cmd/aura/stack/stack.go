// Package stack opens the storage, oracle and services described by a
// resolved config. Every aura command that touches data starts here.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jasonzFong/aura-editor/pkg/almanac"
	"github.com/jasonzFong/aura-editor/pkg/analysis"
	"github.com/jasonzFong/aura-editor/pkg/comments"
	"github.com/jasonzFong/aura-editor/pkg/config"
	"github.com/jasonzFong/aura-editor/pkg/eventstream"
	"github.com/jasonzFong/aura-editor/pkg/eventstream/kafka"
	"github.com/jasonzFong/aura-editor/pkg/eventstream/nop"
	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/llm/provider"
	"github.com/jasonzFong/aura-editor/pkg/memory"
	"github.com/jasonzFong/aura-editor/pkg/oracle"
	"github.com/jasonzFong/aura-editor/pkg/scanner"
	"github.com/jasonzFong/aura-editor/pkg/storage"
	"github.com/jasonzFong/aura-editor/pkg/storage/inmemory"
	"github.com/jasonzFong/aura-editor/pkg/storage/postgres"
	"github.com/jasonzFong/aura-editor/pkg/storage/sqlite"
)

// Stack holds the opened dependencies. Almanac is nil when disabled.
type Stack struct {
	Config    *config.Config
	Store     storage.Driver
	Client    llm.Client
	Publisher eventstream.Publisher

	Memory   *memory.Service
	Scanner  *scanner.Orchestrator
	Analysis *analysis.Service
	Comments *comments.Service
	Almanac  *almanac.Service

	logger *slog.Logger
}

// Open builds a Stack from cfg. dir is the resolved .aura directory used
// for the default SQLite path.
func Open(ctx context.Context, cfg *config.Config, dir string, logger *slog.Logger) (*Stack, error) {
	policy, err := scanner.ParsePolicy(cfg.Scanner.OnOracleFailure)
	if err != nil {
		return nil, err
	}

	store, err := OpenStorage(ctx, cfg, dir, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := OpenPublisher(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	client, err := provider.New(provider.Config{
		Provider: cfg.Oracle.Provider,
		Model:    cfg.Oracle.Model,
		APIKey:   cfg.Oracle.APIKey,
		BaseURL:  cfg.Oracle.BaseURL,
		Logger:   logger,
	})
	if err != nil {
		publisher.Close()
		store.Close()
		return nil, fmt.Errorf("creating oracle client: %w", err)
	}

	s := &Stack{
		Config:    cfg,
		Store:     store,
		Client:    client,
		Publisher: publisher,
		logger:    logger,
	}

	s.Memory = memory.NewService(memory.Config{
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
	})
	s.Scanner = scanner.New(scanner.Config{
		Store:     store,
		Memory:    s.Memory,
		Extractor: oracle.NewExtractor(oracle.Config{Client: client, Logger: logger}),
		Policy:    policy,
		Logger:    logger,
	})
	s.Analysis = analysis.NewService(analysis.Config{
		Client: client,
		Facts:  s.Memory,
		Logger: logger,
	})
	s.Comments = comments.NewService(comments.Config{
		Store:   store,
		Replier: s.Analysis,
		Logger:  logger,
	})

	if cfg.Almanac.Enabled {
		s.Almanac, err = almanac.NewService(almanac.Config{
			Store:     store,
			Client:    client,
			Logger:    logger,
			DaysAhead: cfg.Almanac.DaysAhead,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// OpenStorage opens the configured storage driver.
func OpenStorage(ctx context.Context, cfg *config.Config, dir string, logger *slog.Logger) (storage.Driver, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL store: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return driver, nil

	case "memory":
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case "", "sqlite":
		path := cfg.SQLitePath(dir)
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		logger.Info("using SQLite storage", "path", path)
		return driver, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// OpenPublisher opens the configured memory event publisher.
func OpenPublisher(cfg *config.Config, logger *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: kafka.ParseBrokers(cfg.Events.Brokers),
			Topic:   cfg.Events.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		logger.Info("publishing memory events to kafka", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
		return p, nil
	}
	return nil, fmt.Errorf("unknown events provider %q", cfg.Events.Provider)
}

// Close releases everything Open acquired.
func (s *Stack) Close() error {
	if s.Almanac != nil {
		s.Almanac.Close()
	}
	return errors.Join(s.Publisher.Close(), s.Store.Close())
}
