// orion runs the bot's connection core against a messaging gateway. It
// prints login challenges for an external QR renderer, logs inbound
// messages, and exits non-zero once the reconnect budget is spent.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/orion-bot/orion"
	"github.com/orion-bot/orion/gateway"
	"github.com/orion-bot/orion/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, envFile, logLevel, logFormat string

	flagSet := pflag.NewFlagSet("orion", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file")
	flagSet.StringVar(&envFile, "env-file", ".env", "path to .env file (ignored if missing)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flagSet.StringVar(&logFormat, "log-format", "", "log format: text or json (overrides config)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.LoadAndValidate(configPath,
		config.WithLogLevel(logLevel),
		config.WithLogFormat(logFormat),
	)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialer := gateway.NewDialer(cfg.GatewayConfig(), logger.With("component", "gateway"))
	client := orion.New(cfg.ClientConfig(logger.With("component", "orion")), dialer)
	defer client.Close()

	client.OnQR(func(qr string) {
		logger.Info("scan the login challenge to link this session")
		fmt.Fprintln(os.Stderr, qr)
	})
	client.OnOpen(func() {
		attrs := []any{"boot", client.Boots()}
		if u := client.User(); u != nil {
			attrs = append(attrs, "user", u.ID)
		}
		logger.Info("bot is online", attrs...)
	})
	client.OnMessage(func(m *orion.Message) {
		logger.Info("message",
			"chat", m.Chat,
			"from", client.DisplayName(m.Sender),
			"kind", m.Kind,
			"id", m.ID,
		)
	})

	if cfg.LastFM.APIKey == "" {
		logger.Debug("LASTFM_API_KEY not set, music commands will be unavailable")
	}

	if err := client.Connect(ctx); err != nil {
		if errors.Is(err, orion.ErrReconnectExhausted) {
			return err
		}
		logger.Warn("initial connect failed, retrying", "error", err)
	}

	select {
	case err := <-client.Fatal():
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	}
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
