package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/camuig/stock-quest/internal/tracker"
)

var templateFuncs = template.FuncMap{
	"progress": func(exp, needed int) int {
		if needed <= 0 {
			return 0
		}
		return exp * 100 / needed
	},
}

type HoldingView struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	BuyPrice      float64 `json:"buy_price"`
	CurrentPrice  float64 `json:"current_price"`
	TotalValue    float64 `json:"total_value"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profit_percent"`
}

type DashboardData struct {
	Status   tracker.Status
	Holdings []HoldingView
}

func (s *Server) holdingViews() []HoldingView {
	holdings := s.source.Holdings()
	views := make([]HoldingView, 0, len(holdings))
	for _, h := range holdings {
		views = append(views, HoldingView{
			Symbol:        h.Symbol,
			Name:          h.Name,
			Quantity:      h.Quantity,
			BuyPrice:      h.BuyPrice,
			CurrentPrice:  h.CurrentPrice,
			TotalValue:    h.TotalValue(),
			Profit:        h.Profit(),
			ProfitPercent: h.ProfitPercentage(),
		})
	}
	return views
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{
		Status:   s.source.Status(),
		Holdings: s.holdingViews(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.dashboard.Execute(w, data); err != nil {
		s.logger.Error("execute template", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.source.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":               st.Name,
		"level":              st.Level,
		"title":              st.Title,
		"experience":         st.Experience,
		"exp_for_next_level": st.ExpForNextLevel,
		"health_score":       st.HealthScore,
		"daily_profit_loss":  st.DailyProfitLoss,
		"holdings":           st.Holdings,
		"total_investment":   st.TotalInvestment,
		"total_value":        st.TotalValue,
		"total_profit":       st.TotalProfit,
		"total_profit_pct":   st.TotalProfitPercentage,
		"achievements":       st.Achievements,
		"total_achievements": st.TotalAchievements,
		"total_trades":       st.Stats.TotalTrades,
		"winning_trades":     st.Stats.WinningTrades,
		"losing_trades":      st.Stats.LosingTrades,
		"days_active":        st.Stats.DaysActive,
		"win_rate":           st.WinRate,
	})
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.holdingViews())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.source.Refresh(r.Context())
	switch {
	case errors.Is(err, tracker.ErrRefreshInProgress):
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.logger.Error("refresh from dashboard", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	failed := res.Failed
	if failed == nil {
		failed = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"updated":  res.Updated,
		"failed":   failed,
		"unlocked": res.Unlocked,
		"level":    res.Level,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
