package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/camuig/stock-quest/internal/tracker"
)

// newRegistry exposes the portfolio state as gauges read on every scrape.
func newRegistry(src Source) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, value func(st tracker.Status) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "quest",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(src.Status()) })
	}

	reg.MustRegister(
		gauge("level", "Current level.", func(st tracker.Status) float64 { return float64(st.Level) }),
		gauge("experience", "Experience toward the next level.", func(st tracker.Status) float64 { return float64(st.Experience) }),
		gauge("health_score", "Portfolio health score from 0 to 100.", func(st tracker.Status) float64 { return float64(st.HealthScore) }),
		gauge("holdings", "Number of holdings.", func(st tracker.Status) float64 { return float64(st.Holdings) }),
		gauge("total_value", "Total market value.", func(st tracker.Status) float64 { return st.TotalValue }),
		gauge("total_profit", "Total unrealized profit.", func(st tracker.Status) float64 { return st.TotalProfit }),
		gauge("daily_profit_loss", "Profit snapshot taken at the last refresh.", func(st tracker.Status) float64 { return st.DailyProfitLoss }),
		gauge("achievements", "Unlocked achievements.", func(st tracker.Status) float64 { return float64(len(st.Achievements)) }),
	)
	return reg
}
