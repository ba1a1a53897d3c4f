// Package yahoo reads prices and company names from the public Yahoo Finance
// chart and search endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/quote"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Yahoo rejects requests without a browser-like agent.
const userAgent = "Mozilla/5.0"

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		logger:     log,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				LongName           string  `json:"longName"`
				ShortName          string  `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		LongName  string `json:"longname"`
		ShortName string `json:"shortname"`
	} `json:"quotes"`
}

func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	var chart chartResponse
	path := fmt.Sprintf("/v8/finance/chart/%s?interval=1d&range=1d", url.PathEscape(symbol))
	if err := c.getJSON(ctx, path, &chart); err != nil {
		return 0, err
	}

	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("%w: %s: %s", quote.ErrNoData, symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("%w: %s", quote.ErrNoData, symbol)
	}
	return chart.Chart.Result[0].Meta.RegularMarketPrice, nil
}

func (c *Client) Name(ctx context.Context, symbol string) (string, error) {
	var search searchResponse
	path := fmt.Sprintf("/v1/finance/search?q=%s&quotesCount=1&newsCount=0", url.QueryEscape(symbol))
	if err := c.getJSON(ctx, path, &search); err != nil {
		return "", err
	}

	for _, q := range search.Quotes {
		if q.LongName != "" {
			return q.LongName, nil
		}
		if q.ShortName != "" {
			return q.ShortName, nil
		}
	}
	return "", fmt.Errorf("%w: no name for %s", quote.ErrNoData, symbol)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// The chart endpoint answers unknown symbols with 404 and an error body.
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", quote.ErrNoData, path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse yahoo response: %w", err)
	}
	c.logger.Debug("yahoo request done", "path", path)
	return nil
}

var _ quote.Provider = (*Client)(nil)
