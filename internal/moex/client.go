package moex

import (
	"net/http"
	"time"

	"github.com/camuig/stock-quest/internal/logger"
)

const DefaultBaseURL = "https://iss.moex.com"

// Client reads quotes for TQBR shares from the MOEX ISS API.
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
