package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/camuig/stock-quest/internal/portfolio"
)

var exportHeader = []string{"Symbol", "Name", "Quantity", "Buy Price", "Current Price", "Total Value", "Profit", "Profit %"}

// Export writes one row per holding in ledger order. Money and percentages use
// two decimals, rounded half away from zero.
func Export(w io.Writer, holdings []*portfolio.Holding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, h := range holdings {
		record := []string{
			h.Symbol,
			h.Name,
			strconv.Itoa(h.Quantity),
			fixed2(h.BuyPrice),
			fixed2(h.CurrentPrice),
			fixed2(h.TotalValue()),
			fixed2(h.Profit()),
			fixed2(h.ProfitPercentage()),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", h.Symbol, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

const sampleTemplate = `Symbol,Name,Quantity,Buy Price,Current Price
RELIANCE.NS,Reliance Industries,10,2450.50,2680.75
TCS.NS,Tata Consultancy Services,5,3200.00,3450.25
INFY.NS,Infosys Limited,15,1450.00,1520.80
`

// WriteTemplate writes a sample file readable with TemplateMapping.
func WriteTemplate(w io.Writer) error {
	_, err := io.WriteString(w, sampleTemplate)
	return err
}
