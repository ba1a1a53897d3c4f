package game

import "github.com/camuig/stock-quest/internal/portfolio"

// XP granted for user activity outside of achievements.
const (
	XPPerHolding = 10
	XPSave       = 5
	XPRefresh    = 5
	XPExport     = 15
)

const (
	FirstStock          = "First Stock"
	PortfolioBuilder    = "Portfolio Builder"
	DiversifiedInvestor = "Diversified Investor"
	ProfitMaker         = "Profit Maker"
	BigWinner           = "Big Winner"
	Millionaire         = "Millionaire"
)

// Achievement is a one-time badge unlocked by a ledger condition.
type Achievement struct {
	Name      string
	XP        int
	Condition func(l *portfolio.Ledger) bool
}

// Achievements are evaluated in this order.
var Achievements = []Achievement{
	{Name: FirstStock, XP: 0, Condition: func(l *portfolio.Ledger) bool { return l.Len() == 1 }},
	{Name: PortfolioBuilder, XP: 50, Condition: func(l *portfolio.Ledger) bool { return l.Len() >= 5 }},
	{Name: DiversifiedInvestor, XP: 100, Condition: func(l *portfolio.Ledger) bool { return l.Len() >= 10 }},
	{Name: ProfitMaker, XP: 30, Condition: func(l *portfolio.Ledger) bool { return l.TotalProfit() > 0 }},
	{Name: BigWinner, XP: 200, Condition: func(l *portfolio.Ledger) bool { return l.TotalProfit() >= 10000 }},
	{Name: Millionaire, XP: 500, Condition: func(l *portfolio.Ledger) bool { return l.TotalValue() >= 1000000 }},
}

var TotalAchievements = len(Achievements)

type levelTitle struct {
	below int
	title string
}

var levelTitles = []levelTitle{
	{below: 3, title: "Novice Trader"},
	{below: 5, title: "Learning Investor"},
	{below: 8, title: "Smart Trader"},
	{below: 12, title: "Expert Investor"},
	{below: 20, title: "Portfolio Master"},
}

const topTitle = "Warren Buffett Jr."

// XPNeeded is the experience required to advance from level.
func XPNeeded(level int) int {
	return 100 * level
}

func TitleFor(level int) string {
	for _, lt := range levelTitles {
		if level < lt.below {
			return lt.title
		}
	}
	return topTitle
}
