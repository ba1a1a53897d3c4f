package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `You review a long-term retail equity portfolio.
For every holding decide one action: HOLD (keep as is), ADD (buy more) or TRIM (reduce).
You only advise. The user decides and trades manually.

Rules:
1. Judge each holding by its weight in the portfolio, its profit and the overall diversification.
2. Suggest TRIM for positions above 25% of total value unless there is a strong reason not to.
3. Confidence is 0 to 100.
4. Keep reasoning to one or two sentences.

Reply strictly with a JSON array:
[
  {
    "action": "HOLD",
    "symbol": "TCS.NS",
    "confidence": 70,
    "reasoning": "Reason"
  }
]`

func BuildUserPrompt(req *ReviewRequest) string {
	var sb strings.Builder

	var total, invested float64
	for _, h := range req.Holdings {
		total += h.TotalValue()
		invested += h.TotalInvestment()
	}

	sb.WriteString(fmt.Sprintf("## Portfolio %q\n", req.PortfolioName))
	sb.WriteString(fmt.Sprintf("Value: %.2f / Invested: %.2f / Health score: %d/100\n\n", total, invested, req.HealthScore))

	sb.WriteString("| Symbol | Name | Qty | Buy | Current | Profit% | Weight% |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, h := range req.Holdings {
		weight := 0.0
		if total > 0 {
			weight = h.TotalValue() / total * 100
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | %.2f | %.2f | %.1f |\n",
			h.Symbol, h.Name, h.Quantity, h.BuyPrice, h.CurrentPrice, h.ProfitPercentage(), weight))
	}

	return sb.String()
}
