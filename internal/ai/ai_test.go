package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/portfolio"
)

func TestParseInsights(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Insight
	}{
		{
			name: "array",
			in:   `[{"action":"hold","symbol":"tcs.ns","confidence":70,"reasoning":"steady"}]`,
			want: []Insight{{Action: ActionHold, Symbol: "TCS.NS", Confidence: 70, Reasoning: "steady"}},
		},
		{
			name: "single object in fences",
			in:   "```json\n{\"action\":\"TRIM\",\"symbol\":\"ITC.NS\",\"confidence\":140}\n```",
			want: []Insight{{Action: ActionTrim, Symbol: "ITC.NS", Confidence: 100}},
		},
		{
			name: "prose around array with think tags",
			in:   "<think>weighing</think>Here you go: [{\"action\":\"ADD\",\"symbol\":\"INFY.NS\",\"confidence\":55}] good luck",
			want: []Insight{{Action: ActionAdd, Symbol: "INFY.NS", Confidence: 55}},
		},
		{
			name: "unknown actions and blank symbols dropped",
			in:   `[{"action":"SELL","symbol":"X"},{"action":"HOLD","symbol":" "},{"action":"HOLD","symbol":"Y","confidence":-3}]`,
			want: []Insight{{Action: ActionHold, Symbol: "Y", Confidence: 0}},
		},
		{name: "empty array", in: "[]", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInsights(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInsights_Garbage(t *testing.T) {
	_, err := ParseInsights("I cannot help with that")
	assert.Error(t, err)
}

func sampleHoldings(t *testing.T) []portfolio.Holding {
	t.Helper()
	a, err := portfolio.NewHolding("Tata Consultancy Services", "TCS.NS", 10, 3500, 3650)
	require.NoError(t, err)
	b, err := portfolio.NewHolding("ITC", "ITC.NS", 100, 320, 305)
	require.NoError(t, err)
	return []portfolio.Holding{*a, *b}
}

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt(&ReviewRequest{PortfolioName: "Core", Holdings: sampleHoldings(t), HealthScore: 65})

	assert.Contains(t, p, `Portfolio "Core"`)
	assert.Contains(t, p, "Value: 67000.00 / Invested: 67000.00 / Health score: 65/100")
	assert.Contains(t, p, "| TCS.NS | Tata Consultancy Services | 10 | 3500.00 | 3650.00 | 4.29 | 54.5 |")
	assert.Contains(t, p, "| ITC.NS | ITC | 100 | 320.00 | 305.00 | -4.69 | 45.5 |")
}

func TestReviewer_Review(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[{\"action\":\"HOLD\",\"symbol\":\"TCS.NS\",\"confidence\":80,\"reasoning\":\"fine\"}]"}}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.OpenAI.APIKey = "test"
	cfg.OpenAI.BaseURL = srv.URL

	r := NewReviewer(cfg, logger.Discard())
	insights, raw, err := r.Review(context.Background(), &ReviewRequest{Holdings: sampleHoldings(t)})
	require.NoError(t, err)

	assert.Equal(t, cfg.OpenAI.Model, gotModel)
	assert.NotEmpty(t, raw)
	require.Len(t, insights, 1)
	assert.Equal(t, Insight{Action: ActionHold, Symbol: "TCS.NS", Confidence: 80, Reasoning: "fine"}, insights[0])
}

func TestReviewer_EmptyPortfolioSkipsCall(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAI.BaseURL = "http://127.0.0.1:1"

	insights, raw, err := NewReviewer(cfg, logger.Discard()).Review(context.Background(), &ReviewRequest{})
	require.NoError(t, err)
	assert.Nil(t, insights)
	assert.Empty(t, raw)
}
