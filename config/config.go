// Package config builds the process configuration once at startup.
// Core components never read the environment themselves; everything
// they need arrives through this struct.
package config

import (
	"fmt"
	"os"
	"time"
)

// Revocation backend selection. The storage service is the default;
// Redis suits deployments that keep the blacklist close to the
// instances instead.
const (
	BackendStorage = "storage"
	BackendRedis   = "redis"
)

// Config carries everything the service needs: endpoints, key
// material, and session parameters.
type Config struct {
	ListenAddr        string
	StorageServiceURL string
	StorageTimeout    time.Duration
	RedisURL          string
	RevocationBackend string
	PrivateKeyPEM     string
	PublicKeyPEM      string
	TokenTTL          time.Duration
	CookieName        string
}

// Load reads the configuration from the environment. The public key is
// mandatory; the private key may be absent for verification-only
// instances, which then cannot issue tokens.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        ":" + envOr("AUTH_PORT", "9000"),
		StorageServiceURL: fmt.Sprintf("http://%s:%s", envOr("DB_SERVICE_HOST", "localhost"), envOr("DB_SERVICE_PORT", "8080")),
		StorageTimeout:    10 * time.Second,
		RedisURL:          os.Getenv("REDIS_URL"),
		RevocationBackend: envOr("REVOCATION_BACKEND", BackendStorage),
		PrivateKeyPEM:     os.Getenv("JWT_PRIVATE_KEY"),
		PublicKeyPEM:      os.Getenv("JWT_PUBLIC_KEY"),
		TokenTTL:          30 * 24 * time.Hour,
		CookieName:        envOr("COOKIE_NAME", "authd-token"),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenTTL = parsed
	}

	if cfg.PublicKeyPEM == "" {
		return nil, fmt.Errorf("JWT_PUBLIC_KEY is required")
	}

	switch cfg.RevocationBackend {
	case BackendStorage, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown REVOCATION_BACKEND %q", cfg.RevocationBackend)
	}
	if cfg.RevocationBackend == BackendRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REVOCATION_BACKEND=redis requires REDIS_URL")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
