package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/quote"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logger.Discard())
}

func TestClient_Price(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TCS.NS", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"TCS.NS","regularMarketPrice":3650.55}}],"error":null}}`))
	})

	price, err := c.Price(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, 3650.55, price)
}

func TestClient_PriceUnknownSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := c.Price(context.Background(), "DELISTED.NS")
	assert.ErrorIs(t, err, quote.ErrNoData)
}

func TestClient_PriceEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	_, err := c.Price(context.Background(), "X")
	assert.ErrorIs(t, err, quote.ErrNoData)
}

func TestClient_PriceServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Price(context.Background(), "TCS.NS")
	require.Error(t, err)
	assert.NotErrorIs(t, err, quote.ErrNoData)
}

func TestClient_Name(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "long name", body: `{"quotes":[{"symbol":"INFY.NS","longname":"Infosys Limited","shortname":"INFOSYS"}]}`, want: "Infosys Limited"},
		{name: "short name only", body: `{"quotes":[{"symbol":"INFY.NS","shortname":"INFOSYS"}]}`, want: "INFOSYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "INFY.NS", r.URL.Query().Get("q"))
				_, _ = w.Write([]byte(tt.body))
			})
			got, err := c.Name(context.Background(), "INFY.NS")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_NameNoQuotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quotes":[]}`))
	})

	_, err := c.Name(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, quote.ErrNoData)
}
