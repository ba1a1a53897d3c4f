package storage

import "time"

// portfolioRowID is the primary key of the single portfolio row.
const portfolioRowID = 1

type PortfolioRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	Version         int     `gorm:"not null" json:"version"`
	Name            string  `gorm:"not null" json:"name"`
	Level           int     `gorm:"not null;default:1" json:"level"`
	Experience      int     `json:"experience"`
	DailyProfitLoss float64 `gorm:"column:daily_pnl" json:"daily_profit_loss"`

	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`
	DaysActive    int `json:"days_active"`

	LastActiveDay string `json:"last_active_day"`
}

type HoldingRecord struct {
	ID       uint `gorm:"primarykey" json:"id"`
	Position int  `gorm:"index;not null" json:"position"`

	Name         string  `json:"name"`
	Symbol       string  `gorm:"index;not null" json:"symbol"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	BuyPrice     float64 `gorm:"not null" json:"buy_price"`
	CurrentPrice float64 `json:"current_price"`
}

type AchievementRecord struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Position int    `gorm:"index;not null" json:"position"`
	Name     string `gorm:"not null" json:"name"`
}
