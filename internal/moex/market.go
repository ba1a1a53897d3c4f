package moex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/camuig/stock-quest/internal/quote"
)

const securityPath = "/iss/engines/stock/markets/shares/boards/TQBR/securities/%s.json?iss.meta=off&iss.only=marketdata,securities&marketdata.columns=SECID,LAST,MARKETPRICE&securities.columns=SECID,SHORTNAME,SECNAME"

// SecID maps a portfolio symbol such as "SBER.ME" to an ISS security id.
func SecID(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(symbol, ".ME")
}

func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	iss, err := c.fetchSecurity(ctx, symbol)
	if err != nil {
		return 0, err
	}

	price := toFloat64(iss.Marketdata.value("LAST"))
	if price == 0 {
		// no trades yet today
		price = toFloat64(iss.Marketdata.value("MARKETPRICE"))
	}
	if price == 0 {
		return 0, fmt.Errorf("%w: %s has no last price", quote.ErrNoData, symbol)
	}
	return price, nil
}

func (c *Client) Name(ctx context.Context, symbol string) (string, error) {
	iss, err := c.fetchSecurity(ctx, symbol)
	if err != nil {
		return "", err
	}

	for _, column := range []string{"SECNAME", "SHORTNAME"} {
		if name, _ := iss.Securities.value(column).(string); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s has no name", quote.ErrNoData, symbol)
}

func (c *Client) fetchSecurity(ctx context.Context, symbol string) (*issResponse, error) {
	secID := SecID(symbol)
	if secID == "" {
		return nil, fmt.Errorf("%w: empty symbol", quote.ErrNoData)
	}

	u := c.baseURL + fmt.Sprintf(securityPath, url.PathEscape(secID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch security %s: %w", secID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MOEX ISS returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var iss issResponse
	if err := json.Unmarshal(body, &iss); err != nil {
		return nil, fmt.Errorf("parse ISS response: %w", err)
	}
	if len(iss.Marketdata.Data) == 0 && len(iss.Securities.Data) == 0 {
		return nil, fmt.Errorf("%w: unknown security %s", quote.ErrNoData, secID)
	}

	c.logger.Debug("fetched MOEX security", "secid", secID)
	return &iss, nil
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

var _ quote.Provider = (*Client)(nil)
