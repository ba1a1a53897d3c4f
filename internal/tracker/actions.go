package tracker

import (
	"fmt"
	"io"

	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/importer"
	"github.com/camuig/stock-quest/internal/portfolio"
)

type SortKey string

const (
	SortByName   SortKey = "name"
	SortBySymbol SortKey = "symbol"
	SortByProfit SortKey = "profit"
	SortByValue  SortKey = "value"
)

func (t *Tracker) Sort(key SortKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	ledger := t.engine.Ledger()
	switch key {
	case SortByName:
		ledger.SortByName()
	case SortBySymbol:
		ledger.SortBySymbol()
	case SortByProfit:
		ledger.SortByProfitDesc()
	case SortByValue:
		ledger.SortByValueDesc()
	default:
		return fmt.Errorf("unknown sort key %q", key)
	}
	return nil
}

type ImportResult struct {
	Added    int
	Skipped  []*importer.RowError
	Unlocked []string
}

// Import parses r and adds every valid row as a holding. Each added holding
// earns the usual XP.
func (t *Tracker) Import(format importer.Format, r io.Reader, m importer.Mapping) (ImportResult, error) {
	parsed, err := t.importer.Import(format, r, m)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Skipped: parsed.Skipped}
	if len(parsed.Holdings) == 0 {
		return res, nil
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ImportResult{}, ErrClosed
	}
	before := t.engine.Level()
	for _, h := range parsed.Holdings {
		res.Unlocked = append(res.Unlocked, t.engine.AddHolding(h)...)
		res.Added++
	}
	t.announceLocked(before, res.Unlocked)
	t.mu.Unlock()

	t.autoSaveAfter("import")
	return res, nil
}

// Export writes the holdings as CSV and grants the export reward.
func (t *Tracker) Export(w io.Writer) error {
	t.mu.Lock()
	holdings := t.engine.Ledger().Holdings()
	copies := make([]*portfolio.Holding, len(holdings))
	for i, h := range holdings {
		c := *h
		copies[i] = &c
	}
	t.mu.Unlock()

	if err := importer.Export(w, copies); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		before := t.engine.Level()
		t.engine.AddExperience(game.XPExport)
		t.announceLocked(before, nil)
	}
	return nil
}

func (t *Tracker) WriteTemplate(w io.Writer) error {
	return importer.WriteTemplate(w)
}
