package portfolio

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError reports input rejected before it reaches a ledger.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Holding is a single equity position.
type Holding struct {
	Name         string
	Symbol       string
	Quantity     int
	BuyPrice     float64
	CurrentPrice float64
}

// NewHolding validates the inputs and returns a holding with an uppercased symbol.
// An empty name falls back to the symbol.
func NewHolding(name, symbol string, quantity int, buyPrice, currentPrice float64) (*Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be positive, got %d", quantity)}
	}
	if math.IsNaN(buyPrice) || math.IsInf(buyPrice, 0) || math.IsNaN(currentPrice) || math.IsInf(currentPrice, 0) {
		return nil, &ValidationError{Field: "price", Reason: "must be a finite number"}
	}
	if buyPrice <= 0 {
		return nil, &ValidationError{Field: "buy price", Reason: fmt.Sprintf("must be positive, got %.2f", buyPrice)}
	}
	if currentPrice < 0 {
		return nil, &ValidationError{Field: "current price", Reason: fmt.Sprintf("must not be negative, got %.2f", currentPrice)}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = symbol
	}

	return &Holding{
		Name:         name,
		Symbol:       symbol,
		Quantity:     quantity,
		BuyPrice:     buyPrice,
		CurrentPrice: currentPrice,
	}, nil
}

func (h *Holding) SetCurrentPrice(price float64) {
	h.CurrentPrice = price
}

func (h *Holding) SetQuantity(quantity int) {
	h.Quantity = quantity
}

func (h *Holding) TotalValue() float64 {
	return float64(h.Quantity) * h.CurrentPrice
}

func (h *Holding) TotalInvestment() float64 {
	return float64(h.Quantity) * h.BuyPrice
}

func (h *Holding) Profit() float64 {
	return h.TotalValue() - h.TotalInvestment()
}

// ProfitPercentage is 0 when nothing was invested.
func (h *Holding) ProfitPercentage() float64 {
	investment := h.TotalInvestment()
	if investment == 0 {
		return 0
	}
	return h.Profit() / investment * 100
}

// Less orders holdings by symbol, case-sensitively on the stored symbol.
func (h *Holding) Less(other *Holding) bool {
	return h.Symbol < other.Symbol
}

func (h *Holding) String() string {
	return fmt.Sprintf("%s (%s) - Qty: %d | Buy: %.2f | Current: %.2f | Profit: %.2f (%.2f%%)",
		h.Name, h.Symbol, h.Quantity, h.BuyPrice, h.CurrentPrice, h.Profit(), h.ProfitPercentage())
}
