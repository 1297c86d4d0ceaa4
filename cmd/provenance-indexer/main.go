package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/actors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/middleware"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/rest"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/server"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/block"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/config"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/ingest"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/messaging"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/metrics"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/providers/ethereum"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/providers/jetstream"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/query"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/ratelimit"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/reconciler"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/risk"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "provenance-indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Provenance Indexer")

	// Connect to database and apply migrations
	db, err := store.Open(cfg.Database, &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	if err := store.Migrate(ctx, db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
	)

	dataStore := store.NewGormStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	fs := adapter.NewFileSystem()

	// Seed the actor directory
	if cfg.ActorsPath != "" {
		loader := actors.NewRegistryLoader(fs, jsonAdapter, dataStore)
		n, err := loader.Import(ctx, cfg.ActorsPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to import actor registry", zap.Error(err), zap.String("path", cfg.ActorsPath))
		}
		logger.InfoCtx(ctx, "Imported actor registry", zap.String("path", cfg.ActorsPath), zap.Int("actors", n))
	} else {
		logger.WarnCtx(ctx, "Actor registry path not configured, names resolve only from the database")
	}

	// Initialize ethereum client. Subscriptions need a websocket endpoint.
	ledgerURL := cfg.Ethereum.WebSocketURL
	if ledgerURL == "" {
		ledgerURL = cfg.Ethereum.RPCURL
	}
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, ledgerURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("url", ledgerURL))
	}

	contract, err := ethereum.LoadContractABI(fs, jsonAdapter, cfg.Ethereum.ArtifactPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load contract artifact", zap.Error(err), zap.String("path", cfg.Ethereum.ArtifactPath))
	}

	blocks := block.NewProvider(ethereum.NewBlockFetcher(ethClient), block.Config{}, clockAdapter)
	source, err := ethereum.NewEventSource(ethereum.Config{
		ContractAddress:    cfg.Ethereum.ContractAddress,
		QueryTimeout:       cfg.Ethereum.QueryTimeout,
		SubscriptionBuffer: cfg.Ingest.SubscriptionBuffer,
	}, ethClient, contract, blocks)
	if err != nil {
		ethClient.Close()
		logger.FatalCtx(ctx, "Failed to create event source", zap.Error(err), zap.String("contract", cfg.Ethereum.ContractAddress))
	}
	defer source.Close()
	logger.InfoCtx(ctx, "Connected to ledger",
		zap.String("chain_id", cfg.Ethereum.ChainID),
		zap.String("contract", cfg.Ethereum.ContractAddress))

	// Optional redis for the actor cache and the payload rate limit
	directory := actors.NewStoreDirectory(dataStore)
	var payloadLimiter ratelimit.Limiter
	var redisClient adapter.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = adapter.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			logger.WarnCtx(ctx, "Redis is unreachable, falling back to the database and local limits", zap.Error(err))
		}
		directory = actors.NewCachedDirectory(redisClient, directory, cfg.Redis.ActorCacheTTL)
	}
	if cfg.Server.PayloadRatePerMinute > 0 {
		var distributed adapter.RedisRateLimiter
		if redisClient != nil {
			distributed = redisClient.NewRateLimiter()
		}
		payloadLimiter, err = ratelimit.NewLimiter(ratelimit.Config{PerMinute: cfg.Server.PayloadRatePerMinute}, distributed, clockAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create payload rate limiter", zap.Error(err))
		}
	}

	// Optional NATS publisher
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(
			ctx,
			jetstream.Config{
				URL:            cfg.NATS.URL,
				StreamName:     cfg.NATS.StreamName,
				MaxReconnects:  cfg.NATS.MaxReconnects,
				ReconnectWait:  cfg.NATS.ReconnectWait,
				ConnectionName: cfg.NATS.ConnectionName,
			}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS JetStream")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ingestMetrics := metrics.NewIngestMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	rec := reconciler.New(dataStore)
	ingestor := ingest.NewIngestor(source, rec, dataStore, publisher, ingestMetrics, ingest.Config{
		Chain:            cfg.Ethereum.ChainID,
		StartBlock:       cfg.Ethereum.StartBlock,
		ResumeFromCursor: cfg.Ethereum.ResumeFromCursor,
		EventTimeout:     cfg.Ingest.EventTimeout,
		CursorSaveFreq:   cfg.Ingest.CursorSaveFreq,
		CursorSaveDelay:  cfg.Ingest.CursorSaveDelay,
	}, clockAdapter)

	// Backfill before serving
	head, err := ingestor.Backfill(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to backfill ledger events", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)
	go func() {
		if err := ingestor.Follow(ctx, head+1); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("ingestion stopped: %w", err)
		}
	}()

	// Query service and HTTP server
	svc := query.NewService(dataStore, rec, directory, risk.NewScorer(risk.ConfigFrom(cfg.Risk)), adapter.NewJCS(), clockAdapter, cfg.Lookup.Concurrency)
	defer svc.Close()

	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}, svc, rest.RouteConfig{
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		PayloadLimiter: payloadLimiter,
		Gatherer:       registry,
	}, httpMetrics)

	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "indexer"))
	}
	cancel()

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("Provenance Indexer stopped")
}

