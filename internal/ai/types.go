package ai

import "github.com/camuig/stock-quest/internal/portfolio"

type ReviewRequest struct {
	PortfolioName string
	Holdings      []portfolio.Holding
	HealthScore   int
}

const (
	ActionHold = "HOLD"
	ActionAdd  = "ADD"
	ActionTrim = "TRIM"
)

// Insight is a suggestion for one holding. Nothing acts on it automatically.
type Insight struct {
	Action     string `json:"action"` // HOLD, ADD or TRIM
	Symbol     string `json:"symbol"`
	Confidence int    `json:"confidence"` // 0-100
	Reasoning  string `json:"reasoning"`
}
