package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/portfolio"
	"github.com/camuig/stock-quest/internal/tracker"
)

type fakeSource struct {
	status     tracker.Status
	holdings   []portfolio.Holding
	refreshErr error
	refreshes  int
}

func (f *fakeSource) Status() tracker.Status        { return f.status }
func (f *fakeSource) Holdings() []portfolio.Holding { return f.holdings }
func (f *fakeSource) Refresh(ctx context.Context) (tracker.RefreshResult, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return tracker.RefreshResult{}, f.refreshErr
	}
	return tracker.RefreshResult{Updated: 1, Level: 2}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeSource) {
	t.Helper()
	h, err := portfolio.NewHolding("Infosys", "INFY.NS", 15, 1450, 1520)
	require.NoError(t, err)

	src := &fakeSource{
		status: tracker.Status{
			Name:              "Core",
			Level:             2,
			Title:             game.TitleFor(2),
			Experience:        40,
			ExpForNextLevel:   200,
			HealthScore:       65,
			Holdings:          1,
			TotalInvestment:   21750,
			TotalValue:        22800,
			TotalProfit:       1050,
			Achievements:      []string{game.FirstStock, game.ProfitMaker},
			TotalAchievements: game.TotalAchievements,
		},
		holdings: []portfolio.Holding{*h},
	}
	srv := httptest.NewServer(NewServer(src, 0, logger.Discard()).Handler())
	t.Cleanup(srv.Close)
	return srv, src
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "Level 2: Novice Trader")
	assert.Contains(t, body, "Achievements 2/6")
	assert.Contains(t, body, "INFY.NS")
	assert.Contains(t, body, "width: 20%")
}

func TestStatusJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Core", got["name"])
	assert.Equal(t, float64(2), got["level"])
	assert.Equal(t, float64(65), got["health_score"])
	assert.Equal(t, float64(6), got["total_achievements"])
}

func TestHoldingsJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/holdings")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []HoldingView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "INFY.NS", got[0].Symbol)
	assert.InDelta(t, 22800, got[0].TotalValue, 1e-9)
	assert.InDelta(t, 1050, got[0].Profit, 1e-9)
}

func TestRefresh(t *testing.T) {
	srv, src := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, src.refreshes)

	src.refreshErr = tracker.ErrRefreshInProgress
	resp, err = http.Post(srv.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "quest_level 2")
	assert.Contains(t, body, "quest_health_score 65")
	assert.Contains(t, body, "quest_achievements 2")
	assert.Contains(t, body, "quest_total_value 22800")
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
