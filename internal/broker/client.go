package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/russianinvestments/invest-api-go-sdk/investgo"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
)

const (
	sandboxEndpoint = "sandbox-invest-public-api.tinkoff.ru:443"
	liveEndpoint    = "invest-public-api.tinkoff.ru:443"
)

// BrokerClient wraps the Tinkoff Invest SDK. The SDK binds every call to the
// context given to NewBrokerClient, so per-call contexts only gate the start
// of a request.
type BrokerClient struct {
	Client *investgo.Client
	Config *config.Config
	Logger *logger.Logger

	instruments sync.Map // ticker -> instrument
}

func NewBrokerClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*BrokerClient, error) {
	endpoint := liveEndpoint
	if cfg.IsSandbox() {
		endpoint = sandboxEndpoint
	}

	investCfg := investgo.Config{
		EndPoint:  endpoint,
		Token:     cfg.Tinkoff.Token,
		AccountId: cfg.Tinkoff.AccountID,
		AppName:   "stock-quest",
	}

	client, err := investgo.NewClient(ctx, investCfg, log)
	if err != nil {
		return nil, fmt.Errorf("create investgo client: %w", err)
	}

	return &BrokerClient{
		Client: client,
		Config: cfg,
		Logger: log,
	}, nil
}

func (bc *BrokerClient) AccountID() string {
	return bc.Client.Config.AccountId
}

func (bc *BrokerClient) Stop() error {
	return bc.Client.Stop()
}
