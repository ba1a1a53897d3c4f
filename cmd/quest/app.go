package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/camuig/stock-quest/internal/broker"
	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/moex"
	"github.com/camuig/stock-quest/internal/quote"
	"github.com/camuig/stock-quest/internal/snapshot"
	"github.com/camuig/stock-quest/internal/storage"
	"github.com/camuig/stock-quest/internal/telegram"
	"github.com/camuig/stock-quest/internal/tracker"
	"github.com/camuig/stock-quest/internal/yahoo"
)

// app holds everything a command needs. close must be called once.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	tracker  *tracker.Tracker
	notifier *telegram.Notifier
	broker   *broker.BrokerClient
	closers  []func() error
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &app{
		cfg: cfg,
		log: logger.NewWithWriter(os.Stderr, cfg.Logging.Level),
	}

	store, err := a.openStore()
	if err != nil {
		a.close()
		return nil, err
	}

	provider, err := a.openProvider(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	quotes := quote.NewService(provider, quote.Options{
		Timeout:           cfg.QuoteTimeout(),
		RequestsPerSecond: cfg.Quotes.RequestsPerSecond,
		Burst:             cfg.Quotes.Burst,
		BreakerFailures:   cfg.Quotes.BreakerFailures,
	}, a.log)

	a.notifier = telegram.NewNotifier(cfg, a.log)
	a.tracker = tracker.Open(store, quotes, tracker.Options{
		Name:        cfg.Portfolio.Name,
		Concurrency: cfg.Quotes.Concurrency,
		Notifier:    a.notifier,
	}, a.log)

	// The tracker saves on close, so it must close before the store.
	a.closers = append([]func() error{a.tracker.Close}, a.closers...)
	return a, nil
}

func (a *app) openStore() (snapshot.Store, error) {
	path := a.cfg.Portfolio.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if a.cfg.Storage.Driver != "sqlite" {
		return snapshot.NewFileStore(path), nil
	}

	repo, err := storage.OpenRepository(path, a.log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo.Close)
	return repo, nil
}

func (a *app) openProvider(ctx context.Context) (quote.Provider, error) {
	switch a.cfg.Quotes.Provider {
	case "moex":
		return moex.NewClient("", a.log), nil
	case "tinkoff":
		bc, err := a.openBroker(ctx)
		if err != nil {
			return nil, err
		}
		return bc, nil
	default:
		return yahoo.NewClient("", a.log), nil
	}
}

func (a *app) openBroker(ctx context.Context) (*broker.BrokerClient, error) {
	if a.broker != nil {
		return a.broker, nil
	}
	bc, err := broker.NewBrokerClient(ctx, a.cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("broker: %w", err)
	}
	a.broker = bc
	a.closers = append(a.closers, bc.Stop)
	return bc, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Error("shutdown", "error", err)
		}
	}
	a.closers = nil
}
