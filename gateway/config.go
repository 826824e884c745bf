package gateway

import (
	"net/url"
	"strings"
	"time"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultChunkSize      = 64 * 1024
	defaultEventBuffer    = 256
)

// Config holds connection parameters.
type Config struct {
	Endpoint       string        // WebSocket URL (e.g. "ws://localhost:9000/ws")
	MediaEndpoint  string        // media HTTP base URL, derived from Endpoint if empty
	Session        string        // session name the gateway keeps credentials under
	Token          string        // bearer token
	RequestTimeout time.Duration // per capability call
	ChunkSize      int           // media download chunk size
}

func (cfg Config) withDefaults() Config {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MediaEndpoint == "" {
		cfg.MediaEndpoint = resolveMediaBase(cfg.Endpoint)
	}
	cfg.MediaEndpoint = strings.TrimRight(cfg.MediaEndpoint, "/")
	return cfg
}

// resolveMediaBase derives the media base URL from the WebSocket endpoint:
// ws becomes http, wss becomes https, and the path is replaced by /media.
func resolveMediaBase(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "http://localhost:9000/media"
	}
	scheme := "http"
	if u.Scheme == "wss" || u.Scheme == "https" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/media"
}
