package game

import (
	"slices"
	"time"

	"github.com/camuig/stock-quest/internal/portfolio"
)

const dayLayout = "2006-01-02"

type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	DaysActive    int
}

// State is the plain-data form of an engine, used to restore persisted portfolios.
type State struct {
	Level           int
	Experience      int
	DailyProfitLoss float64
	Achievements    []string
	Stats           Stats
	LastActiveDay   string
}

// Engine owns a ledger and derives levels, achievements and health from it.
// It is not safe for concurrent use.
type Engine struct {
	ledger          *portfolio.Ledger
	level           int
	experience      int
	dailyProfitLoss float64
	achievements    []string
	stats           Stats
	lastActiveDay   string
}

func New(name string) *Engine {
	return &Engine{
		ledger: portfolio.NewLedger(name),
		level:  1,
	}
}

// Restore rebuilds an engine around an existing ledger. The level is clamped to 1
// but experience is taken as is.
func Restore(ledger *portfolio.Ledger, st State) *Engine {
	level := st.Level
	if level < 1 {
		level = 1
	}
	return &Engine{
		ledger:          ledger,
		level:           level,
		experience:      st.Experience,
		dailyProfitLoss: st.DailyProfitLoss,
		achievements:    slices.Clone(st.Achievements),
		stats:           st.Stats,
		lastActiveDay:   st.LastActiveDay,
	}
}

func (e *Engine) State() State {
	return State{
		Level:           e.level,
		Experience:      e.experience,
		DailyProfitLoss: e.dailyProfitLoss,
		Achievements:    slices.Clone(e.achievements),
		Stats:           e.stats,
		LastActiveDay:   e.lastActiveDay,
	}
}

func (e *Engine) Ledger() *portfolio.Ledger {
	return e.ledger
}

// AddHolding appends h to the ledger, counts it as a trade, grants XP and
// returns the achievements it unlocked.
func (e *Engine) AddHolding(h *portfolio.Holding) []string {
	e.ledger.Add(h)
	e.stats.TotalTrades++
	e.AddExperience(XPPerHolding)
	return e.EvaluateAchievements()
}

func (e *Engine) RemoveHolding(symbol string) bool {
	return e.ledger.Remove(symbol)
}

// AddExperience adds amount and levels up while the threshold is met.
// Negative amounts are accepted as is.
func (e *Engine) AddExperience(amount int) {
	e.experience += amount
	for e.experience >= XPNeeded(e.level) {
		e.experience -= XPNeeded(e.level)
		e.level++
	}
}

func (e *Engine) Level() int {
	return e.level
}

func (e *Engine) Experience() int {
	return e.experience
}

func (e *Engine) ExpForNextLevel() int {
	return XPNeeded(e.level)
}

func (e *Engine) Title() string {
	return TitleFor(e.level)
}

func (e *Engine) RecordTradeOutcome(winning bool) {
	if winning {
		e.stats.WinningTrades++
	} else {
		e.stats.LosingTrades++
	}
}

// EvaluateAchievements awards every achievement whose condition holds and that
// was not awarded before. It returns the newly awarded names in award order.
func (e *Engine) EvaluateAchievements() []string {
	var unlocked []string
	for _, a := range Achievements {
		if e.HasAchievement(a.Name) || !a.Condition(e.ledger) {
			continue
		}
		e.achievements = append(e.achievements, a.Name)
		if a.XP > 0 {
			e.AddExperience(a.XP)
		}
		unlocked = append(unlocked, a.Name)
	}
	return unlocked
}

func (e *Engine) HasAchievement(name string) bool {
	return slices.Contains(e.achievements, name)
}

func (e *Engine) Achievements() []string {
	return slices.Clone(e.achievements)
}

// HealthScore is a 0-100 blend of diversification and profitability.
func (e *Engine) HealthScore() int {
	score := 50

	n := e.ledger.Len()
	if n >= 5 {
		score += 15
	}
	if n >= 10 {
		score += 10
	}

	if e.ledger.TotalProfit() > 0 {
		score += 15
	}
	if e.ledger.TotalProfitPercentage() > 10 {
		score += 10
	}

	return min(score, 100)
}

// UpdateDailyProfitLoss snapshots the current total profit.
func (e *Engine) UpdateDailyProfitLoss() {
	e.dailyProfitLoss = e.ledger.TotalProfit()
}

func (e *Engine) DailyProfitLoss() float64 {
	return e.dailyProfitLoss
}

func (e *Engine) Stats() Stats {
	return e.stats
}

// WinRate is winning trades as an integer percentage of all trades.
func (e *Engine) WinRate() int {
	if e.stats.TotalTrades == 0 {
		return 0
	}
	return e.stats.WinningTrades * 100 / e.stats.TotalTrades
}

// RecordActiveDay counts day once towards DaysActive. It reports whether the
// counter moved.
func (e *Engine) RecordActiveDay(day time.Time) bool {
	key := day.Format(dayLayout)
	if key == e.lastActiveDay {
		return false
	}
	e.lastActiveDay = key
	e.stats.DaysActive++
	return true
}
