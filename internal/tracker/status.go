package tracker

import "github.com/camuig/stock-quest/internal/game"

// Status is a read-only view of the portfolio and its progress.
type Status struct {
	Name                  string
	Level                 int
	Title                 string
	Experience            int
	ExpForNextLevel       int
	HealthScore           int
	DailyProfitLoss       float64
	Holdings              int
	TotalInvestment       float64
	TotalValue            float64
	TotalProfit           float64
	TotalProfitPercentage float64
	Achievements          []string
	TotalAchievements     int
	Stats                 game.Stats
	WinRate               int
}

func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.engine
	l := e.Ledger()
	return Status{
		Name:                  l.Name(),
		Level:                 e.Level(),
		Title:                 e.Title(),
		Experience:            e.Experience(),
		ExpForNextLevel:       e.ExpForNextLevel(),
		HealthScore:           e.HealthScore(),
		DailyProfitLoss:       e.DailyProfitLoss(),
		Holdings:              l.Len(),
		TotalInvestment:       l.TotalInvestment(),
		TotalValue:            l.TotalValue(),
		TotalProfit:           l.TotalProfit(),
		TotalProfitPercentage: l.TotalProfitPercentage(),
		Achievements:          e.Achievements(),
		TotalAchievements:     game.TotalAchievements,
		Stats:                 e.Stats(),
		WinRate:               e.WinRate(),
	}
}
