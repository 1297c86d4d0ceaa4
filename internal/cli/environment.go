package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/actors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/block"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/config"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/ingest"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/messaging"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/providers/ethereum"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/query"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/reconciler"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/risk"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
)

// Environment provides the collaborators used by the commands
type Environment interface {
	// Migrate applies pending schema migrations
	Migrate(ctx context.Context) error
	// Ingestor dials the ledger on first use
	Ingestor(ctx context.Context) (ingest.Ingestor, error)
	Query() query.Service
	Registry() actors.RegistryLoader
	Close()
}

// EnvironmentFactory builds an Environment from the parsed global flags
type EnvironmentFactory func(ctx context.Context, opts *RootOptions) (Environment, error)

type environment struct {
	cfg   *config.CLIConfig
	db    *gorm.DB
	store store.Store
	query query.Service
	clock adapter.Clock
	json  adapter.JSON
	fs    adapter.FileSystem

	mu       sync.Mutex
	ingestor ingest.Ingestor
	source   messaging.EventSource
}

// NewEnvironment loads the CLI configuration and opens the database
func NewEnvironment(ctx context.Context, opts *RootOptions) (Environment, error) {
	cfg, err := config.LoadCLIConfig(opts.ConfigFile, opts.EnvPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug || opts.Verbose,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "provenance-cli",
		},
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}

	db, err := store.Open(cfg.Database, &gorm.Config{})
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open database", err)
	}
	logger.DebugCtx(ctx, "Connected to database", zap.String("driver", cfg.Database.Driver))

	clock := adapter.NewClock()
	dataStore := store.NewGormStore(db)
	svc := query.NewService(
		dataStore,
		reconciler.New(dataStore),
		actors.NewStoreDirectory(dataStore),
		risk.NewScorer(risk.ConfigFrom(cfg.Risk)),
		adapter.NewJCS(),
		clock,
		cfg.Lookup.Concurrency,
	)

	return &environment{
		cfg:   cfg,
		db:    db,
		store: dataStore,
		query: svc,
		clock: clock,
		json:  adapter.NewJSON(),
		fs:    adapter.NewFileSystem(),
	}, nil
}

func (e *environment) Migrate(ctx context.Context) error {
	return store.Migrate(ctx, e.db)
}

func (e *environment) Ingestor(ctx context.Context) (ingest.Ingestor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ingestor != nil {
		return e.ingestor, nil
	}

	contract, err := ethereum.LoadContractABI(e.fs, e.json, e.cfg.Ethereum.ArtifactPath)
	if err != nil {
		return nil, err
	}

	client, err := adapter.NewEthClientDialer().Dial(ctx, e.cfg.Ethereum.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial Ethereum RPC: %w", err)
	}

	blocks := block.NewProvider(ethereum.NewBlockFetcher(client), block.Config{}, e.clock)
	source, err := ethereum.NewEventSource(ethereum.Config{
		ContractAddress: e.cfg.Ethereum.ContractAddress,
		QueryTimeout:    e.cfg.Ethereum.QueryTimeout,
	}, client, contract, blocks)
	if err != nil {
		client.Close()
		return nil, err
	}

	e.source = source
	e.ingestor = ingest.NewIngestor(source, reconciler.New(e.store), e.store, nil, nil, ingest.Config{
		Chain:        e.cfg.Ethereum.ChainID,
		StartBlock:   e.cfg.Ethereum.StartBlock,
		EventTimeout: e.cfg.Ingest.EventTimeout,
	}, e.clock)

	return e.ingestor, nil
}

func (e *environment) Query() query.Service {
	return e.query
}

func (e *environment) Registry() actors.RegistryLoader {
	return actors.NewRegistryLoader(e.fs, e.json, e.store)
}

func (e *environment) Close() {
	e.query.Close()

	e.mu.Lock()
	if e.source != nil {
		e.source.Close()
	}
	e.mu.Unlock()

	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Flush(2 * time.Second)
}
