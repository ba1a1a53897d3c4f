// Package tracker is the application layer over a gamified portfolio. Each
// user action maps to one method; all of them are safe for concurrent use.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/importer"
	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/portfolio"
	"github.com/camuig/stock-quest/internal/snapshot"
)

var (
	ErrPriceUnavailable  = errors.New("current price unavailable")
	ErrRefreshInProgress = errors.New("refresh already in progress")
	ErrClosed            = errors.New("tracker is closed")
)

// Quotes is the lookup side of quote.Service.
type Quotes interface {
	FetchCurrentPrice(ctx context.Context, symbol string) float64
	FetchStockName(ctx context.Context, symbol string) (string, bool)
}

// Notifier receives user-facing events. Implementations must not block for long.
type Notifier interface {
	NotifyLevelUp(level int, title string)
	NotifyAchievement(name string)
	NotifyRefresh(updated, failed int, totalValue, totalProfit float64)
	NotifyError(context string, err error)
}

type nopNotifier struct{}

func (nopNotifier) NotifyLevelUp(int, string)                {}
func (nopNotifier) NotifyAchievement(string)                 {}
func (nopNotifier) NotifyRefresh(int, int, float64, float64) {}
func (nopNotifier) NotifyError(string, error)                {}

type Options struct {
	// Name is used when no stored portfolio can be loaded.
	Name        string
	Concurrency int
	Notifier    Notifier
	Now         func() time.Time
}

type Tracker struct {
	mu     sync.Mutex
	engine *game.Engine
	closed bool

	// saveMu serializes writes to the store and is taken before mu. dirty
	// marks a change an autosave could not write itself.
	saveMu sync.Mutex
	dirty  atomic.Bool
	store  snapshot.Store

	refreshing atomic.Bool

	quotes      Quotes
	importer    *importer.Importer
	notifier    Notifier
	concurrency int
	now         func() time.Time
	log         *logger.Logger
}

// Open loads the stored portfolio. Any load failure is logged and replaced by a
// fresh portfolio, so Open itself never fails.
func Open(store snapshot.Store, quotes Quotes, opts Options, log *logger.Logger) *Tracker {
	if opts.Name == "" {
		opts.Name = config.DefaultPortfolioName
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t := &Tracker{
		store:       store,
		quotes:      quotes,
		importer:    importer.New(log),
		notifier:    opts.Notifier,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		log:         log,
	}
	t.engine = t.load(opts.Name)

	if t.engine.RecordActiveDay(t.now()) {
		log.Info("new active day", "days_active", t.engine.Stats().DaysActive)
	}
	return t
}

func (t *Tracker) load(name string) *game.Engine {
	snap, err := t.store.Load()
	if err == nil {
		engine, rerr := snap.Restore()
		if rerr == nil {
			t.log.Info("portfolio loaded", "name", engine.Ledger().Name(), "holdings", engine.Ledger().Len(), "level", engine.Level())
			return engine
		}
		err = rerr
	}

	if errors.Is(err, snapshot.ErrNotFound) {
		t.log.Info("no saved portfolio, starting fresh", "name", name)
	} else {
		t.log.Warn("could not load portfolio, starting fresh", "name", name, "error", err)
	}
	return game.New(name)
}

// AddStock looks up the current price and name of symbol and adds a holding.
// A buyPrice of 0 means the position was bought at the current price.
func (t *Tracker) AddStock(ctx context.Context, symbol string, quantity int, buyPrice float64) (portfolio.Holding, []string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return portfolio.Holding{}, nil, &portfolio.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if quantity <= 0 {
		return portfolio.Holding{}, nil, &portfolio.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if buyPrice < 0 {
		return portfolio.Holding{}, nil, &portfolio.ValidationError{Field: "buy price", Reason: "must be positive"}
	}

	current := t.quotes.FetchCurrentPrice(ctx, symbol)
	if current <= 0 {
		return portfolio.Holding{}, nil, fmt.Errorf("%s: %w", symbol, ErrPriceUnavailable)
	}

	name, ok := t.quotes.FetchStockName(ctx, symbol)
	if !ok {
		name = symbol
	}
	if buyPrice == 0 {
		buyPrice = current
	}

	h, err := portfolio.NewHolding(name, symbol, quantity, buyPrice, current)
	if err != nil {
		return portfolio.Holding{}, nil, err
	}

	unlocked, err := t.AddHolding(h)
	if err != nil {
		return portfolio.Holding{}, nil, err
	}
	return *h, unlocked, nil
}

// AddHolding adds an already validated holding and returns the achievements it
// unlocked.
func (t *Tracker) AddHolding(h *portfolio.Holding) ([]string, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	before := t.engine.Level()
	unlocked := t.engine.AddHolding(h)
	t.announceLocked(before, unlocked)
	t.mu.Unlock()

	t.log.Info("holding added", "symbol", h.Symbol, "quantity", h.Quantity, "buy_price", h.BuyPrice)
	t.autoSaveAfter("add")
	return unlocked, nil
}

// Remove drops every holding with symbol, ignoring case.
func (t *Tracker) Remove(symbol string) (bool, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false, ErrClosed
	}
	removed := t.engine.RemoveHolding(strings.TrimSpace(symbol))
	t.mu.Unlock()

	if removed {
		t.log.Info("holding removed", "symbol", symbol)
		t.autoSaveAfter("remove")
	}
	return removed, nil
}

// RecordTrade feeds the win/loss counters.
func (t *Tracker) RecordTrade(winning bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	t.engine.RecordTradeOutcome(winning)
	return nil
}

// Rename changes the display name of the portfolio.
func (t *Tracker) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &portfolio.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.engine.Ledger().SetName(name)
	return nil
}

// Holdings returns copies of the holdings in ledger order.
func (t *Tracker) Holdings() []portfolio.Holding {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.holdingsLocked()
}

func (t *Tracker) holdingsLocked() []portfolio.Holding {
	hs := t.engine.Ledger().Holdings()
	out := make([]portfolio.Holding, len(hs))
	for i, h := range hs {
		out[i] = *h
	}
	return out
}

// Close saves one last time and rejects further mutations. It is safe to call
// more than once.
func (t *Tracker) Close() error {
	t.saveMu.Lock()
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.saveMu.Unlock()
		return nil
	}
	t.closed = true
	snap := snapshot.Capture(t.engine)
	t.mu.Unlock()
	defer t.saveMu.Unlock()

	return t.writeLocked(snap)
}

// announceLocked sends level-up and achievement notifications. Callers hold mu.
func (t *Tracker) announceLocked(levelBefore int, unlocked []string) {
	for _, name := range unlocked {
		t.log.Info("achievement unlocked", "achievement", name)
		t.notifier.NotifyAchievement(name)
	}
	if lvl := t.engine.Level(); lvl > levelBefore {
		t.log.Info("level up", "from", levelBefore, "to", lvl, "title", t.engine.Title())
		t.notifier.NotifyLevelUp(lvl, t.engine.Title())
	}
}
