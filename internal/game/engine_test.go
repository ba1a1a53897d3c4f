package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/stock-quest/internal/portfolio"
)

func holding(t *testing.T, symbol string, qty int, buy, current float64) *portfolio.Holding {
	t.Helper()
	h, err := portfolio.NewHolding(symbol, symbol, qty, buy, current)
	require.NoError(t, err)
	return h
}

func TestXPNeeded(t *testing.T) {
	for level := 1; level <= 50; level++ {
		assert.Equal(t, 100*level, XPNeeded(level))
	}
}

func TestAddExperience_Normalizes(t *testing.T) {
	tests := []struct {
		name      string
		amount    int
		wantLevel int
		wantExp   int
	}{
		{name: "below threshold", amount: 99, wantLevel: 1, wantExp: 99},
		{name: "exact threshold", amount: 100, wantLevel: 2, wantExp: 0},
		{name: "250 stops at level 2", amount: 250, wantLevel: 2, wantExp: 150},
		{name: "multi level jump", amount: 100 + 200 + 300 + 7, wantLevel: 4, wantExp: 7},
		{name: "zero", amount: 0, wantLevel: 1, wantExp: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New("p")
			e.AddExperience(tt.amount)
			assert.Equal(t, tt.wantLevel, e.Level())
			assert.Equal(t, tt.wantExp, e.Experience())
		})
	}
}

func TestAddExperience_InvariantHolds(t *testing.T) {
	e := New("p")
	for _, amount := range []int{0, 1, 37, 150, 999, 5000, 12345} {
		e.AddExperience(amount)
		assert.GreaterOrEqual(t, e.Experience(), 0)
		assert.Less(t, e.Experience(), XPNeeded(e.Level()))
	}
}

func TestAddExperience_NegativeIsNotGuarded(t *testing.T) {
	e := New("p")
	e.AddExperience(-20)
	assert.Equal(t, 1, e.Level())
	assert.Equal(t, -20, e.Experience())
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "Novice Trader"},
		{2, "Novice Trader"},
		{3, "Learning Investor"},
		{4, "Learning Investor"},
		{5, "Smart Trader"},
		{7, "Smart Trader"},
		{8, "Expert Investor"},
		{11, "Expert Investor"},
		{12, "Portfolio Master"},
		{19, "Portfolio Master"},
		{20, "Warren Buffett Jr."},
		{99, "Warren Buffett Jr."},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("level %d", tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFor(tt.level))
		})
	}
}

func TestAddHolding_CountsTradeAndAwardsXP(t *testing.T) {
	e := New("p")
	unlocked := e.AddHolding(holding(t, "TCS.NS", 1, 100, 100))

	assert.Equal(t, []string{FirstStock}, unlocked)
	assert.Equal(t, 1, e.Stats().TotalTrades)
	assert.Equal(t, XPPerHolding, e.Experience())
	assert.Equal(t, 1, e.Ledger().Len())
}

func TestAddHolding_PortfolioBuilder(t *testing.T) {
	e := New("p")
	for i := 0; i < 5; i++ {
		e.AddHolding(holding(t, fmt.Sprintf("S%d.NS", i), 1, 100, 100))
	}

	// 5 holdings * 10 XP + 50 for the badge.
	assert.Equal(t, 2, e.Level())
	assert.Equal(t, 0, e.Experience())
	assert.Equal(t, []string{FirstStock, PortfolioBuilder}, e.Achievements())
	assert.Equal(t, 5, e.Stats().TotalTrades)
}

func TestEvaluateAchievements_Order(t *testing.T) {
	e := New("p")
	e.Ledger().Add(holding(t, "BIG.NS", 1000, 900, 1100))

	unlocked := e.EvaluateAchievements()

	assert.Equal(t, []string{FirstStock, ProfitMaker, BigWinner, Millionaire}, unlocked)
	// 30 + 200 + 500 = 730 XP: 100 -> L2, 200 -> L3, 300 -> L4, 130 left.
	assert.Equal(t, 4, e.Level())
	assert.Equal(t, 130, e.Experience())
}

func TestEvaluateAchievements_Idempotent(t *testing.T) {
	e := New("p")
	e.Ledger().Add(holding(t, "A.NS", 10, 100, 120))

	first := e.EvaluateAchievements()
	level, exp := e.Level(), e.Experience()
	second := e.EvaluateAchievements()

	assert.Equal(t, []string{FirstStock, ProfitMaker}, first)
	assert.Empty(t, second)
	assert.Equal(t, first, e.Achievements())
	assert.Equal(t, level, e.Level())
	assert.Equal(t, exp, e.Experience())
}

func TestEvaluateAchievements_NeverRevoked(t *testing.T) {
	e := New("p")
	h := holding(t, "A.NS", 10, 100, 120)
	e.AddHolding(h)
	require.True(t, e.HasAchievement(ProfitMaker))

	h.SetCurrentPrice(50)
	e.RemoveHolding("A.NS")
	e.EvaluateAchievements()

	assert.True(t, e.HasAchievement(FirstStock))
	assert.True(t, e.HasAchievement(ProfitMaker))
}

func TestHealthScore(t *testing.T) {
	build := func(n int, buy, current float64) *Engine {
		e := New("p")
		for i := 0; i < n; i++ {
			e.Ledger().Add(holding(t, fmt.Sprintf("S%d.NS", i), 1, buy, current))
		}
		return e
	}

	tests := []struct {
		name string
		e    *Engine
		want int
	}{
		{name: "empty", e: build(0, 1, 1), want: 50},
		{name: "four losing", e: build(4, 100, 90), want: 50},
		{name: "five flat", e: build(5, 100, 100), want: 65},
		{name: "ten flat", e: build(10, 100, 100), want: 75},
		{name: "one slightly profitable", e: build(1, 100, 105), want: 65},
		{name: "one very profitable", e: build(1, 100, 150), want: 75},
		{name: "twenty very profitable clamps", e: build(20, 100, 150), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.HealthScore())
		})
	}
}

func TestDailyProfitLossIsASnapshot(t *testing.T) {
	e := New("p")
	h := holding(t, "A.NS", 10, 100, 110)
	e.Ledger().Add(h)

	assert.Equal(t, 0.0, e.DailyProfitLoss())
	e.UpdateDailyProfitLoss()
	assert.InDelta(t, 100, e.DailyProfitLoss(), 1e-9)

	h.SetCurrentPrice(90)
	assert.InDelta(t, 100, e.DailyProfitLoss(), 1e-9)
	e.UpdateDailyProfitLoss()
	assert.InDelta(t, -100, e.DailyProfitLoss(), 1e-9)
}

func TestTradeOutcomesAndWinRate(t *testing.T) {
	e := New("p")
	assert.Equal(t, 0, e.WinRate())

	for i := 0; i < 4; i++ {
		e.AddHolding(holding(t, fmt.Sprintf("S%d.NS", i), 1, 100, 100))
	}
	e.RecordTradeOutcome(true)
	e.RecordTradeOutcome(true)
	e.RecordTradeOutcome(false)

	st := e.Stats()
	assert.Equal(t, 2, st.WinningTrades)
	assert.Equal(t, 1, st.LosingTrades)
	assert.Equal(t, 50, e.WinRate())
}

func TestRecordActiveDay(t *testing.T) {
	e := New("p")
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.True(t, e.RecordActiveDay(day))
	assert.False(t, e.RecordActiveDay(day.Add(5*time.Hour)))
	assert.True(t, e.RecordActiveDay(day.AddDate(0, 0, 1)))
	assert.Equal(t, 2, e.Stats().DaysActive)
}

func TestRestoreRoundTripsState(t *testing.T) {
	e := New("p")
	e.AddHolding(holding(t, "A.NS", 10, 100, 120))
	e.RecordTradeOutcome(true)
	e.UpdateDailyProfitLoss()

	restored := Restore(e.Ledger(), e.State())
	assert.Equal(t, e.State(), restored.State())

	restored.AddExperience(1)
	assert.NotEqual(t, e.Experience(), restored.Experience())
}
