package broker

import (
	"fmt"
	"strings"

	"github.com/camuig/stock-quest/internal/quote"
)

type instrument struct {
	UID    string
	Ticker string
	Name   string
}

// Ticker maps a portfolio symbol such as "SBER.ME" to an exchange ticker.
func Ticker(symbol string) string {
	return strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(symbol)), ".ME")
}

func (bc *BrokerClient) findInstrument(symbol string) (instrument, error) {
	ticker := Ticker(symbol)
	if cached, ok := bc.instruments.Load(ticker); ok {
		return cached.(instrument), nil
	}

	resp, err := bc.Client.NewInstrumentsServiceClient().FindInstrument(ticker)
	if err != nil {
		return instrument{}, fmt.Errorf("find instrument %s: %w", ticker, err)
	}

	found := resp.GetInstruments()
	if len(found) == 0 {
		return instrument{}, fmt.Errorf("%w: instrument not found: %s", quote.ErrNoData, ticker)
	}

	best := found[0]
	for _, inst := range found {
		if inst.GetTicker() == ticker {
			best = inst
			break
		}
	}

	inst := instrument{UID: best.GetUid(), Ticker: best.GetTicker(), Name: best.GetName()}
	bc.instruments.Store(ticker, inst)
	return inst, nil
}

func (bc *BrokerClient) instrumentByUID(uid string) (instrument, error) {
	resp, err := bc.Client.NewInstrumentsServiceClient().InstrumentByUid(uid)
	if err != nil {
		return instrument{}, fmt.Errorf("instrument by uid %s: %w", uid, err)
	}

	i := resp.GetInstrument()
	inst := instrument{UID: uid, Ticker: i.GetTicker(), Name: i.GetName()}
	bc.instruments.Store(inst.Ticker, inst)
	return inst, nil
}
