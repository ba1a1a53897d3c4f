// Package snapshot defines the persisted shape of a portfolio and the file
// store that reads and writes it.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/portfolio"
)

// Version is bumped whenever the encoded shape changes incompatibly.
const Version = 1

var magic = []byte("QUEST")

var (
	ErrNotFound     = errors.New("snapshot not found")
	ErrCorrupt      = errors.New("snapshot is corrupt")
	ErrIncompatible = errors.New("snapshot has an incompatible version")
)

// LoadError wraps one of the sentinel errors with the location that failed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store persists snapshots. Load reports failures as *LoadError.
type Store interface {
	Save(s *Snapshot) error
	Load() (*Snapshot, error)
}

type Holding struct {
	Name         string  `msgpack:"name"`
	Symbol       string  `msgpack:"symbol"`
	Quantity     int     `msgpack:"quantity"`
	BuyPrice     float64 `msgpack:"buy_price"`
	CurrentPrice float64 `msgpack:"current_price"`
}

type Stats struct {
	TotalTrades   int `msgpack:"total_trades"`
	WinningTrades int `msgpack:"winning_trades"`
	LosingTrades  int `msgpack:"losing_trades"`
	DaysActive    int `msgpack:"days_active"`
}

// Snapshot is an immutable copy of a ledger and its gamification state.
type Snapshot struct {
	Version         int       `msgpack:"version"`
	Name            string    `msgpack:"name"`
	Holdings        []Holding `msgpack:"holdings"`
	Level           int       `msgpack:"level"`
	Experience      int       `msgpack:"experience"`
	DailyProfitLoss float64   `msgpack:"daily_profit_loss"`
	Achievements    []string  `msgpack:"achievements"`
	Stats           Stats     `msgpack:"stats"`
	LastActiveDay   string    `msgpack:"last_active_day"`
}

func Capture(e *game.Engine) *Snapshot {
	st := e.State()
	ledger := e.Ledger()

	s := &Snapshot{
		Version:         Version,
		Name:            ledger.Name(),
		Holdings:        make([]Holding, 0, ledger.Len()),
		Level:           st.Level,
		Experience:      st.Experience,
		DailyProfitLoss: st.DailyProfitLoss,
		Achievements:    st.Achievements,
		Stats: Stats{
			TotalTrades:   st.Stats.TotalTrades,
			WinningTrades: st.Stats.WinningTrades,
			LosingTrades:  st.Stats.LosingTrades,
			DaysActive:    st.Stats.DaysActive,
		},
		LastActiveDay: st.LastActiveDay,
	}
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
	for _, h := range ledger.Holdings() {
		s.Holdings = append(s.Holdings, Holding{
			Name:         h.Name,
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			BuyPrice:     h.BuyPrice,
			CurrentPrice: h.CurrentPrice,
		})
	}
	return s
}

// Restore builds a fresh engine. Holdings are taken verbatim so that a stored
// portfolio always reloads unchanged.
func (s *Snapshot) Restore() (*game.Engine, error) {
	if s.Version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrIncompatible, s.Version, Version)
	}
	if s.Level < 1 {
		return nil, fmt.Errorf("%w: level %d", ErrCorrupt, s.Level)
	}

	ledger := portfolio.NewLedger(s.Name)
	for _, h := range s.Holdings {
		ledger.Add(&portfolio.Holding{
			Name:         h.Name,
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			BuyPrice:     h.BuyPrice,
			CurrentPrice: h.CurrentPrice,
		})
	}

	return game.Restore(ledger, game.State{
		Level:           s.Level,
		Experience:      s.Experience,
		DailyProfitLoss: s.DailyProfitLoss,
		Achievements:    s.Achievements,
		Stats: game.Stats{
			TotalTrades:   s.Stats.TotalTrades,
			WinningTrades: s.Stats.WinningTrades,
			LosingTrades:  s.Stats.LosingTrades,
			DaysActive:    s.Stats.DaysActive,
		},
		LastActiveDay: s.LastActiveDay,
	}), nil
}

// Encode writes a magic prefix followed by the msgpack body.
func Encode(s *Snapshot) ([]byte, error) {
	body, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(append([]byte{}, magic...), body...), nil
}

// Decode reverses Encode. It returns ErrCorrupt for foreign or damaged data and
// ErrIncompatible for a known but different version.
func Decode(data []byte) (*Snapshot, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: missing header", ErrCorrupt)
	}

	var s Snapshot
	if err := msgpack.Unmarshal(data[len(magic):], &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrIncompatible, s.Version, Version)
	}
	return &s, nil
}
