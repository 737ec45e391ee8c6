package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/blob"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/config"
	"github.com/feral-file/ff-minter/internal/correlator"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/marketplace"
	"github.com/feral-file/ff-minter/internal/minting"
	"github.com/feral-file/ff-minter/internal/notifier"
	"github.com/feral-file/ff-minter/internal/payment"
	"github.com/feral-file/ff-minter/internal/poller"
	"github.com/feral-file/ff-minter/internal/providers/ethereum"
	"github.com/feral-file/ff-minter/internal/providers/fireblocks"
	"github.com/feral-file/ff-minter/internal/providers/immutablex"
	"github.com/feral-file/ff-minter/internal/providers/simplex"
	"github.com/feral-file/ff-minter/internal/ratelimit"
	"github.com/feral-file/ff-minter/internal/store"
	"github.com/feral-file/ff-minter/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadMinterConfig(*configFile, *envPath)
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
			"service":     "minter",
			"environment": cfg.Environment,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Minter")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)
	dataStore := store.NewPGStore(db)

	clock := adapter.NewClock()

	// Chain back-ends
	ethClient, err := ethereum.NewClient(ethereum.Config{
		SignerKeys:  cfg.Ethereum.SignerKeys,
		DialTimeout: cfg.Ethereum.DialTimeout,
	}, adapter.NewEthClientDialer())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create ethereum client", zap.Error(err))
	}
	defer ethClient.Close()

	immutableClient, err := immutablex.NewClient(immutablex.Config{
		APIURL:          cfg.ImmutableX.APIURL,
		APIKey:          cfg.ImmutableX.APIKey,
		SignerKey:       cfg.ImmutableX.SignerKey,
		RoyaltyAddress:  cfg.ImmutableX.RoyaltyAddress,
		RoyaltyPercent:  cfg.ImmutableX.RoyaltyPercent,
		MetadataBaseURL: chain.PublicURL(cfg.Blob.PublicBaseURL, cfg.Blob.Prefix),
	}, providerHTTPClient(cfg, "immutablex", cfg.ImmutableX.RequestTimeout), adapter.NewJCS(), dataStore)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create immutable client", zap.Error(err))
	}

	custodyClient, err := fireblocks.NewClient(fireblocks.Config{
		APIURL:         cfg.Custody.APIURL,
		APIKey:         cfg.Custody.APIKey,
		PrivateKey:     cfg.Custody.PrivateKey,
		PrivateKeyPath: cfg.Custody.PrivateKeyPath,
	}, providerHTTPClient(cfg, "custody", cfg.Custody.RequestTimeout), clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create custody client", zap.Error(err))
	}

	registry, err := chain.NewRegistry(cfg.Descriptors(), chain.Backends{
		Default: chain.Backend{
			Client:      ethClient,
			Custody:     custodyClient,
			Marketplace: marketplace.NewOpenSea(cfg.Marketplace.OpenSeaURL),
		},
		Immutable: chain.Backend{
			Client:      immutableClient,
			Custody:     custodyClient,
			Marketplace: marketplace.NewImmutableX(cfg.Marketplace.ImmutableXURL),
		},
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to build network registry", zap.Error(err))
	}
	for _, n := range registry.Networks() {
		logger.InfoCtx(ctx, "Registered network", zap.String("network", n.Name), zap.String("client", string(n.ClientKind)))
	}

	// Metadata storage
	s3Client, err := adapter.NewS3Client(ctx, adapter.S3Options{Region: cfg.Blob.Region, Endpoint: cfg.Blob.Endpoint})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create S3 client", zap.Error(err))
	}
	uploader := blob.NewS3Uploader(blob.Config{
		Bucket:        cfg.Blob.Bucket,
		Prefix:        cfg.Blob.Prefix,
		PublicBaseURL: cfg.Blob.PublicBaseURL,
	}, s3Client)

	// Notifications
	notif := notifier.NewNop()
	if cfg.NATS.URL != "" {
		notif, err = notifier.NewJetStreamNotifier(notifier.Config{
			URL:            cfg.NATS.URL,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS JetStream", zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
	}
	defer notif.Close()

	// Reconciliation core
	corr := correlator.New(correlator.Config{
		ListenerTTL:  cfg.Correlator.ListenerTTL,
		ReplayBuffer: cfg.Correlator.ReplayBuffer,
	}, clock)
	defer corr.Close()

	processor := simplex.NewClient(simplex.Config{
		APIURL:          cfg.Payment.APIURL,
		APIKey:          cfg.Payment.APIKey,
		WalletID:        cfg.Payment.WalletID,
		WalletAddress:   cfg.Payment.WalletAddress,
		FiatCurrency:    cfg.Payment.FiatCurrency,
		DigitalCurrency: cfg.Payment.DigitalCode,
	}, providerHTTPClient(cfg, "payment", cfg.Payment.RequestTimeout))

	paymentPoller := poller.New(poller.Config{
		Interval:          cfg.Poller.Interval,
		TickTimeout:       cfg.Poller.TickTimeout,
		DeleteConcurrency: cfg.Poller.DeleteConcurrency,
	}, processor, clock)

	mintService := minting.NewService(dataStore, registry, corr, uploader, notif, clock)
	paymentService := payment.NewService(dataStore, processor, paymentPoller, mintService, notif, clock)

	// Recover in-flight work from durable state
	report, err := mintService.Recover(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to recover unconfirmed mints", zap.Error(err))
	}
	if report.Failed > 0 {
		logger.WarnCtx(ctx, "Some unconfirmed mints could not be recovered", zap.Int("failed", report.Failed))
	}
	if _, err := paymentService.Recover(ctx); err != nil {
		logger.FatalCtx(ctx, "Failed to recover submitted payments", zap.Error(err))
	}

	reconciliation := sweeper.NewReconciliationSweeper(sweeper.ReconciliationConfig{
		ExpiryInterval:        cfg.Correlator.SweepInterval,
		ReconcileInterval:     cfg.Correlator.ReconcileInterval,
		PaymentResyncInterval: cfg.Poller.RecoverInterval,
	}, mintService, paymentService)

	errChan := make(chan error, 1)
	go func() {
		if err := reconciliation.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	logger.InfoCtx(ctx, "Minter started",
		zap.Int("recovered_mints", report.Finalized+report.Rebound),
		zap.Int("pending_payments", paymentPoller.Pending()))

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := reconciliation.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	if err := paymentPoller.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Minter stopped")
}

// providerHTTPClient returns the HTTP client of a provider, throttled when a budget is configured
func providerHTTPClient(cfg *config.MinterConfig, provider string, timeout time.Duration) adapter.HTTPClient {
	limit := cfg.RateLimits[provider]
	return ratelimit.NewHTTPClient(provider, ratelimit.Config{
		RequestsPerSecond: limit.RequestsPerSecond,
		Burst:             limit.Burst,
		MaxQueueTime:      limit.MaxQueueTime,
	}, adapter.NewHTTPClient(timeout))
}
