package cmd

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/abhinayb/pubwatch/internal/config"
	"github.com/abhinayb/pubwatch/internal/extract"
	"github.com/abhinayb/pubwatch/internal/fetch"
	"github.com/abhinayb/pubwatch/internal/match"
	"github.com/abhinayb/pubwatch/internal/monitor"
	"github.com/abhinayb/pubwatch/internal/notify"
	"github.com/abhinayb/pubwatch/internal/state"
)

// buildMonitor assembles the full pipeline from configuration. The returned
// cleanup function releases every resource the build acquired and is safe
// to call even after a partial failure.
func buildMonitor(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*monitor.Monitor, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	store, err := buildStore(ctx, cfg, logger, &cleanups)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	fetcher := buildFetcher(cfg, logger, &cleanups)

	notifier, err := buildNotifier(ctx, cfg, logger, &cleanups)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	m := monitor.New(
		monitor.Config{
			URL:       cfg.Monitor.URL,
			Year:      cfg.Monitor.Year,
			Keyword:   cfg.Monitor.Keyword,
			Recipient: cfg.Monitor.Recipient,
			Subject:   cfg.Monitor.Subject,
		},
		store,
		fetcher,
		notifier,
		extract.New(extract.DefaultConfig(), logger),
		match.New(cfg.Monitor.Year, cfg.Monitor.Keyword),
		nil, nil, nil,
		logger,
	)
	return m, cleanup, nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, cleanups *[]func()) (state.Store, error) {
	switch cfg.State.Backend {
	case config.StateBackendFile:
		return state.NewFileStore(cfg.State.Path, logger)
	case config.StateBackendMemory:
		return state.NewMemoryStore(), nil
	case config.StateBackendPostgres:
		store, err := state.NewPostgresStore(ctx, cfg.State.DSN, cfg.State.Name, logger)
		if err != nil {
			return nil, fmt.Errorf("build postgres state store: %w", err)
		}
		*cleanups = append(*cleanups, store.Close)
		return store, nil
	case config.StateBackendGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("build gcs client: %w", err)
		}
		*cleanups = append(*cleanups, func() { _ = client.Close() })
		return state.NewGCSStore(client, cfg.State.Bucket, cfg.State.Object, logger)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

func buildFetcher(cfg *config.Config, logger *zap.Logger, cleanups *[]func()) monitor.Fetcher {
	fetchCfg := fetch.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
	}
	if cfg.Fetch.Mode == config.FetchModeHeadless {
		f := fetch.NewHeadless(fetchCfg, logger)
		*cleanups = append(*cleanups, f.Close)
		return f
	}
	return fetch.NewColly(fetchCfg, logger)
}

func buildNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger, cleanups *[]func()) (monitor.Notifier, error) {
	switch cfg.Notify.Transport {
	case config.NotifyTransportPubSub:
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("build pubsub client: %w", err)
		}
		*cleanups = append(*cleanups, func() { _ = client.Close() })
		return notify.NewPubSub(client, cfg.PubSub.Topic, logger)
	case config.NotifyTransportEmail:
		return notify.NewEmail(notify.EmailConfig{
			Server:   cfg.SMTP.Server,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown notify transport %q", cfg.Notify.Transport)
	}
}
