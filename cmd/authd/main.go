package main

import (
	"crypto/rsa"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/tmoj/authd/adapters/events"
	"github.com/tmoj/authd/adapters/store"
	"github.com/tmoj/authd/adapters/storeapi"
	"github.com/tmoj/authd/adapters/tokenizer"
	"github.com/tmoj/authd/config"
	"github.com/tmoj/authd/ports"
	"github.com/tmoj/authd/service"
	transport "github.com/tmoj/authd/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	publicKey, err := tokenizer.ParsePublicKey([]byte(cfg.PublicKeyPEM))
	if err != nil {
		logger.Error("failed to parse public key", "error", err)
		os.Exit(1)
	}

	// Without a private key the instance verifies tokens but cannot
	// issue them.
	var privateKey *rsa.PrivateKey
	if cfg.PrivateKeyPEM != "" {
		privateKey, err = tokenizer.ParsePrivateKey([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			logger.Error("failed to parse private key", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no private key configured, token issuance disabled")
	}

	storageClient := storeapi.NewClient(cfg.StorageServiceURL, cfg.StorageTimeout)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
	}

	var revocations ports.RevocationStore = storageClient
	if cfg.RevocationBackend == config.BackendRedis {
		revocations = store.NewRedisStore(redisClient)
	}

	var publisher ports.EventPublisher
	if redisClient != nil {
		wmPublisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewSlogLogger(logger),
		)
		if err != nil {
			logger.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
		publisher = events.NewWatermillPublisher(wmPublisher)
	}

	authService := service.NewAuthService(
		tokenizer.NewRSATokenizer(privateKey, publicKey),
		revocations,
		storageClient,
		storageClient,
		publisher,
		logger,
	).WithTokenTTL(cfg.TokenTTL)

	router := transport.SetupRouter(authService, cfg.CookieName, cfg.TokenTTL, logger)

	logger.Info("starting auth service", "addr", cfg.ListenAddr, "revocation_backend", cfg.RevocationBackend)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
