package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nourish-chain/liquidity-pool/internal/ai"
	"github.com/nourish-chain/liquidity-pool/internal/cache"
	"github.com/nourish-chain/liquidity-pool/internal/config"
	"github.com/nourish-chain/liquidity-pool/internal/flags"
	"github.com/nourish-chain/liquidity-pool/internal/identity"
	"github.com/nourish-chain/liquidity-pool/internal/keyring"
	"github.com/nourish-chain/liquidity-pool/internal/pool"
	"github.com/nourish-chain/liquidity-pool/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the pool API server
// It constructs the pool with all collaborators and starts the HTTP server
// with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Initialize Redis client for the event cache and kill switches
	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0, // Use default database for main application
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	// Event cache doubles as the pool's event sink
	eventCache := cache.NewRedisCache(rclient, logger)

	// Kill-switch store for runtime operation gating
	flagStore, err := flags.NewStore(rclient)
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}

	// Humanity verifier: remote API when configured, otherwise allow all
	var verifier identity.Verifier = identity.AllowAll()
	if c := identity.NewClient(cfg.VerifierBaseURL, cfg.VerifierAPIKey); c != nil {
		c.HTTP.Timeout = cfg.HTTPTimeout
		verifier = c
		logger.WithField("url", cfg.VerifierBaseURL).Info("using remote humanity verifier")
	}

	// Signer/encryptor capability for provider data and audit signatures
	keys, err := keyring.NewEd25519Keyring()
	if err != nil {
		logger.WithError(err).Fatal("failed to create keyring")
	}

	// Construct the pool ledger itself
	p, err := pool.New(cfg.FeeRateBps, cfg.TreasuryRateBps,
		pool.WithVerifier(verifier),
		pool.WithKeyring(keys),
		pool.WithEventSink(eventCache),
		pool.WithLogger(logger),
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to construct pool")
	}
	logger.WithFields(logrus.Fields{
		"fee_bps":      cfg.FeeRateBps,
		"treasury_bps": cfg.TreasuryRateBps,
		"audit_key":    keyring.EncodeKey(p.AuditPublicKey()),
	}).Info("pool constructed")

	// Initialize AI agent for natural language queries (optional)
	var agent *ai.Agent
	aiBase := ai.AgentConfig{
		ClickHouseAddr:     cfg.ClickHouseAddr,
		ClickHouseDatabase: cfg.ClickHouseDatabase,
		ClickHouseUsername: cfg.ClickHouseUsername,
		ClickHousePassword: cfg.ClickHousePassword,
		OpenRouterAPIKey:   cfg.OpenRouterAPIKey,
		Model:              "openai/gpt-4.1-mini", // Default model for NL→SQL translation
		Logger:             logger,
	}

	// Only initialize AI if OpenRouter API key is provided
	if cfg.OpenRouterAPIKey != "" {
		a, err := ai.NewAgent(ctx, aiBase)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize ai agent")
		} else {
			agent = a
			defer func() {
				_ = agent.Close() // Clean up AI resources on shutdown
			}()
		}
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Pool:         p,
		Cache:        eventCache,
		Flags:        flagStore,
		AI:           agent,
		AIBaseConfig: aiBase,
		DevMode:      cfg.DevMode,
		Logger:       logger,
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
