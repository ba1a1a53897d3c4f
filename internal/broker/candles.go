package broker

import (
	"context"
	"fmt"
	"time"

	pb "github.com/russianinvestments/invest-api-go-sdk/proto"

	"github.com/camuig/stock-quest/internal/quote"
)

// lookback covers weekends and holidays when looking for the last trade.
const lookback = 5 * 24 * time.Hour

// Price returns the close of the most recent hourly candle.
func (bc *BrokerClient) Price(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	inst, err := bc.findInstrument(symbol)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	resp, err := bc.Client.NewMarketDataServiceClient().GetCandles(
		inst.UID,
		pb.CandleInterval_CANDLE_INTERVAL_HOUR,
		now.Add(-lookback), now,
		pb.GetCandlesRequest_CANDLE_SOURCE_EXCHANGE,
		0,
	)
	if err != nil {
		return 0, fmt.Errorf("get candles %s: %w", inst.Ticker, err)
	}

	price := latestClose(resp.GetCandles())
	if price <= 0 {
		return 0, fmt.Errorf("%w: no candles for %s", quote.ErrNoData, inst.Ticker)
	}
	return price, nil
}

func (bc *BrokerClient) Name(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	inst, err := bc.findInstrument(symbol)
	if err != nil {
		return "", err
	}
	return inst.Name, nil
}

func latestClose(candles []*pb.HistoricCandle) float64 {
	var latest *pb.HistoricCandle
	for _, c := range candles {
		if latest == nil || c.GetTime().AsTime().After(latest.GetTime().AsTime()) {
			latest = c
		}
	}
	if latest == nil {
		return 0
	}
	return latest.GetClose().ToFloat()
}

var _ quote.Provider = (*BrokerClient)(nil)
