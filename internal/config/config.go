// Package config loads the host binary's settings from a YAML file, a .env
// file and the process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/orion-bot/orion"
	"github.com/orion-bot/orion/gateway"
)

// Config is the top-level host configuration.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	LastFM    LastFMConfig    `yaml:"lastfm"`
}

type GatewayConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	MediaEndpoint  string        `yaml:"media_endpoint"`
	Session        string        `yaml:"session"`
	Token          string        `yaml:"token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ChunkSize      int           `yaml:"chunk_size"`
}

type ReconnectConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

type CacheConfig struct {
	ClearInterval   time.Duration `yaml:"clear_interval"`
	MessagesPerChat int           `yaml:"messages_per_chat"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// LastFMConfig holds metadata-service credentials. They are passed through
// to bot commands and never used by the connection layer.
type LastFMConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// Default returns a config with every default applied and no endpoint.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Gateway.Session == "" {
		c.Gateway.Session = "default"
	}
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = gateway.DefaultRequestTimeout
	}
	if c.Gateway.ChunkSize == 0 {
		c.Gateway.ChunkSize = gateway.DefaultChunkSize
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = orion.DefaultMaxReconnectAttempts
	}
	if c.Reconnect.Delay == 0 {
		c.Reconnect.Delay = orion.DefaultReconnectDelay
	}
	if c.Cache.ClearInterval == 0 {
		c.Cache.ClearInterval = orion.DefaultCacheClearInterval
	}
	if c.Cache.MessagesPerChat == 0 {
		c.Cache.MessagesPerChat = orion.DefaultMessagesPerChat
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv fills settings left empty by the file from the environment.
func (c *Config) applyEnv() {
	setIfEmpty(&c.Gateway.Endpoint, "ORION_GATEWAY_ENDPOINT")
	setIfEmpty(&c.Gateway.Token, "ORION_GATEWAY_TOKEN")
	setIfEmpty(&c.LastFM.APIKey, "LASTFM_API_KEY")
	setIfEmpty(&c.LastFM.APISecret, "LASTFM_API_SECRET")
}

func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Gateway.Endpoint == "" {
		return errors.New("gateway.endpoint is required")
	}
	u, err := url.Parse(c.Gateway.Endpoint)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("gateway.endpoint must be a ws:// or wss:// URL, got %q", c.Gateway.Endpoint)
	}
	if c.Reconnect.MaxAttempts < 1 {
		return errors.New("reconnect.max_attempts must be >= 1")
	}
	if c.Reconnect.Delay < 0 {
		return errors.New("reconnect.delay must be >= 0")
	}
	if c.Cache.MessagesPerChat < 1 {
		return errors.New("cache.messages_per_chat must be >= 1")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, err
	}
	return l, nil
}

// ClientConfig returns the orion.Client settings.
func (c *Config) ClientConfig(logger *slog.Logger) orion.Config {
	return orion.Config{
		MaxReconnectAttempts: c.Reconnect.MaxAttempts,
		ReconnectDelay:       c.Reconnect.Delay,
		CacheClearInterval:   c.Cache.ClearInterval,
		MessagesPerChat:      c.Cache.MessagesPerChat,
		Logger:               logger,
	}
}

// GatewayConfig returns the transport settings.
func (c *Config) GatewayConfig() gateway.Config {
	return gateway.Config{
		Endpoint:       c.Gateway.Endpoint,
		MediaEndpoint:  c.Gateway.MediaEndpoint,
		Session:        c.Gateway.Session,
		Token:          c.Gateway.Token,
		RequestTimeout: c.Gateway.RequestTimeout,
		ChunkSize:      c.Gateway.ChunkSize,
	}
}
