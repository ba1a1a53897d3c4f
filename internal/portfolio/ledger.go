package portfolio

import (
	"sort"
	"strings"
)

// Ledger is an ordered collection of holdings. Symbols are not required to be unique.
type Ledger struct {
	name     string
	holdings []*Holding
}

func NewLedger(name string) *Ledger {
	return &Ledger{name: name}
}

func (l *Ledger) Name() string {
	return l.name
}

func (l *Ledger) SetName(name string) {
	l.name = name
}

// Add appends h, even if its symbol is already present.
func (l *Ledger) Add(h *Holding) {
	l.holdings = append(l.holdings, h)
}

// Remove drops every holding whose symbol matches case-insensitively.
func (l *Ledger) Remove(symbol string) bool {
	kept := l.holdings[:0]
	removed := false
	for _, h := range l.holdings {
		if strings.EqualFold(h.Symbol, symbol) {
			removed = true
			continue
		}
		kept = append(kept, h)
	}
	for i := len(kept); i < len(l.holdings); i++ {
		l.holdings[i] = nil
	}
	l.holdings = kept
	return removed
}

// Find returns the first holding matching symbol case-insensitively.
func (l *Ledger) Find(symbol string) (*Holding, bool) {
	for _, h := range l.holdings {
		if strings.EqualFold(h.Symbol, symbol) {
			return h, true
		}
	}
	return nil, false
}

// Holdings returns a copy of the slice; the holdings themselves are shared.
func (l *Ledger) Holdings() []*Holding {
	out := make([]*Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

func (l *Ledger) Len() int {
	return len(l.holdings)
}

func (l *Ledger) SortByName() {
	sort.SliceStable(l.holdings, func(i, j int) bool {
		return l.holdings[i].Name < l.holdings[j].Name
	})
}

func (l *Ledger) SortBySymbol() {
	sort.SliceStable(l.holdings, func(i, j int) bool {
		return l.holdings[i].Less(l.holdings[j])
	})
}

func (l *Ledger) SortByProfitDesc() {
	sort.SliceStable(l.holdings, func(i, j int) bool {
		return l.holdings[i].Profit() > l.holdings[j].Profit()
	})
}

func (l *Ledger) SortByValueDesc() {
	sort.SliceStable(l.holdings, func(i, j int) bool {
		return l.holdings[i].TotalValue() > l.holdings[j].TotalValue()
	})
}

func (l *Ledger) TotalInvestment() float64 {
	var total float64
	for _, h := range l.holdings {
		total += h.TotalInvestment()
	}
	return total
}

func (l *Ledger) TotalValue() float64 {
	var total float64
	for _, h := range l.holdings {
		total += h.TotalValue()
	}
	return total
}

func (l *Ledger) TotalProfit() float64 {
	return l.TotalValue() - l.TotalInvestment()
}

func (l *Ledger) TotalProfitPercentage() float64 {
	investment := l.TotalInvestment()
	if investment == 0 {
		return 0
	}
	return l.TotalProfit() / investment * 100
}
