package broker

import (
	"fmt"
	"math"

	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
)

// PositionInfo is one share position held on the broker account.
type PositionInfo struct {
	Ticker       string
	Name         string
	Quantity     int
	AvgPrice     float64
	CurrentPrice float64
}

// Positions lists the account's share positions. Currency and fractional
// leftovers are skipped.
func (bc *BrokerClient) Positions() ([]PositionInfo, error) {
	accountID := bc.AccountID()
	currency := pb.PortfolioRequest_RUB

	var resp interface {
		GetPositions() []*pb.PortfolioPosition
	}

	if bc.Config.IsSandbox() {
		r, err := bc.Client.NewSandboxServiceClient().GetSandboxPortfolio(accountID, currency)
		if err != nil {
			return nil, fmt.Errorf("get sandbox portfolio: %w", err)
		}
		resp = r.PortfolioResponse
	} else {
		r, err := bc.Client.NewOperationsServiceClient().GetPortfolio(accountID, currency)
		if err != nil {
			return nil, fmt.Errorf("get portfolio: %w", err)
		}
		resp = r.PortfolioResponse
	}

	var positions []PositionInfo
	for _, pos := range resp.GetPositions() {
		if pos.GetInstrumentType() != "share" {
			continue
		}

		pi := PositionInfo{}
		if q := pos.GetQuantity(); q != nil {
			pi.Quantity = int(math.Floor(q.ToFloat()))
		}
		if pi.Quantity <= 0 {
			continue
		}
		if ap := pos.GetAveragePositionPrice(); ap != nil {
			pi.AvgPrice = ap.ToFloat()
		}
		if cp := pos.GetCurrentPrice(); cp != nil {
			pi.CurrentPrice = cp.ToFloat()
		}

		inst, err := bc.instrumentByUID(pos.GetInstrumentUid())
		if err != nil {
			bc.Logger.Warn("skip position", "uid", pos.GetInstrumentUid(), "error", err)
			continue
		}
		pi.Ticker = inst.Ticker
		pi.Name = inst.Name

		positions = append(positions, pi)
	}

	return positions, nil
}
