package tracker

import (
	"context"
	"strings"
	"sync"

	"github.com/camuig/stock-quest/internal/game"
)

// RefreshResult summarizes one price refresh.
type RefreshResult struct {
	Updated  int
	Failed   []string
	Unlocked []string
	Level    int
}

type RefreshOutcome struct {
	Result RefreshResult
	Err    error
}

type priceUpdate struct {
	symbol string
	price  float64
}

// Refresh fetches a new price for every distinct symbol and applies the
// completion rewards once. Lookups run without holding the portfolio lock.
// Symbols that fail keep their previous price. If ctx is cancelled before the
// lookups finish nothing is applied.
func (t *Tracker) Refresh(ctx context.Context) (RefreshResult, error) {
	if !t.refreshing.CompareAndSwap(false, true) {
		return RefreshResult{}, ErrRefreshInProgress
	}
	defer t.refreshing.Store(false)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return RefreshResult{}, ErrClosed
	}
	symbols := distinctSymbols(t.engine)
	t.mu.Unlock()

	t.log.Info("refreshing prices", "symbols", len(symbols))
	updates := t.fetchPrices(ctx, symbols)
	if err := ctx.Err(); err != nil {
		t.log.Warn("refresh cancelled", "error", err)
		return RefreshResult{}, err
	}

	result := RefreshResult{}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return RefreshResult{}, ErrClosed
	}
	for _, u := range updates {
		if u.price <= 0 {
			result.Failed = append(result.Failed, u.symbol)
			continue
		}
		for _, h := range t.engine.Ledger().Holdings() {
			if strings.EqualFold(h.Symbol, u.symbol) {
				h.SetCurrentPrice(u.price)
				result.Updated++
			}
		}
	}

	// The refresh reward does not depend on how many prices moved; an empty
	// portfolio earns it too.
	before := t.engine.Level()
	t.engine.AddExperience(game.XPRefresh)
	t.engine.UpdateDailyProfitLoss()
	result.Unlocked = t.engine.EvaluateAchievements()
	result.Level = t.engine.Level()
	t.announceLocked(before, result.Unlocked)

	ledger := t.engine.Ledger()
	totalValue, totalProfit := ledger.TotalValue(), ledger.TotalProfit()
	t.mu.Unlock()

	t.log.Info("refresh complete", "updated", result.Updated, "failed", len(result.Failed))
	t.autoSaveAfter("refresh")
	t.notifier.NotifyRefresh(result.Updated, len(result.Failed), totalValue, totalProfit)
	return result, nil
}

// StartRefresh runs Refresh in the background. The channel receives exactly
// one outcome and is then closed.
func (t *Tracker) StartRefresh(ctx context.Context) <-chan RefreshOutcome {
	out := make(chan RefreshOutcome, 1)
	go func() {
		defer close(out)
		res, err := t.Refresh(ctx)
		out <- RefreshOutcome{Result: res, Err: err}
	}()
	return out
}

// fetchPrices returns one update per symbol, in input order.
func (t *Tracker) fetchPrices(ctx context.Context, symbols []string) []priceUpdate {
	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, t.concurrency)
		updates = make([]priceUpdate, len(symbols))
	)

	for i, symbol := range symbols {
		updates[i].symbol = symbol
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, s string) {
			defer wg.Done()
			defer func() { <-sem }()

			updates[i].price = t.quotes.FetchCurrentPrice(ctx, s)
		}(i, symbol)
	}

	wg.Wait()
	return updates
}

func distinctSymbols(e *game.Engine) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, h := range e.Ledger().Holdings() {
		key := strings.ToUpper(h.Symbol)
		if seen[key] {
			continue
		}
		seen[key] = true
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}
