// Package config loads server configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config holds configuration for the conversion servers.
type Config struct {
	// ListenAddr is the TCP address of the Arrow server (e.g., ":50051")
	ListenAddr string `validate:"required"`

	// ZmqEndpoint enables the ZeroMQ endpoint when set
	ZmqEndpoint string `validate:"omitempty,startswith=tcp://|startswith=ipc://|startswith=inproc://"`

	// GRPCAddr enables the gRPC endpoint when set
	GRPCAddr string

	// MetricsAddr serves /metrics when set
	MetricsAddr string

	AuthEnabled bool
	AuthToken   string `validate:"required_if=AuthEnabled true"`

	// MaxConcurrent bounds conversions running at the same time
	MaxConcurrent int64 `validate:"min=1"`

	LogLevel string `validate:"oneof=debug info warn error"`
	Pretty   bool
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		ListenAddr:    ":50051",
		MetricsAddr:   ":9090",
		MaxConcurrent: 8,
		LogLevel:      "info",
	}
}

// FromEnv reads HIE_* variables over the defaults and validates the result.
// If auth is enabled without a token, a random token is generated.
func FromEnv() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	c := Default()

	get := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	get("HIE_LISTEN_ADDR", &c.ListenAddr)
	get("HIE_ZMQ_ENDPOINT", &c.ZmqEndpoint)
	get("HIE_GRPC_ADDR", &c.GRPCAddr)
	get("HIE_METRICS_ADDR", &c.MetricsAddr)
	get("HIE_AUTH_TOKEN", &c.AuthToken)
	get("HIE_LOG_LEVEL", &c.LogLevel)

	c.AuthEnabled = envBool(lookup, "HIE_AUTH_ENABLED")
	c.Pretty = envBool(lookup, "PRETTY")

	if v, ok := lookup("HIE_MAX_CONCURRENT"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid HIE_MAX_CONCURRENT %q: %w", v, err)
		}
		c.MaxConcurrent = n
	}

	if c.AuthEnabled && c.AuthToken == "" {
		c.AuthToken = GenerateToken()
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func envBool(lookup func(string) (string, bool), key string) bool {
	v, _ := lookup(key)
	return v == "true" || v == "1"
}

var validate = validator.New()

// Validate checks the field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GenerateToken generates a cryptographically secure random token.
func GenerateToken() string {
	bytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("config: reading random token: %v", err))
	}
	return hex.EncodeToString(bytes)
}
