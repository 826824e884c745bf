package orion

import (
	"log/slog"
	"time"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 5 * time.Second
	DefaultCacheClearInterval   = 5 * time.Minute
)

// Config holds Client parameters.
type Config struct {
	MaxReconnectAttempts int           // consecutive failed attempts before giving up
	ReconnectDelay       time.Duration // fixed wait between attempts
	CacheClearInterval   time.Duration // message cache purge period; negative disables
	MessagesPerChat      int           // message cache depth per chat
	Logger               *slog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.CacheClearInterval == 0 {
		cfg.CacheClearInterval = DefaultCacheClearInterval
	}
	if cfg.MessagesPerChat <= 0 {
		cfg.MessagesPerChat = DefaultMessagesPerChat
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
