package claim

import (
	"fmt"
	"strings"

	"github.com/moyoez/claimdesk/types"
)

// Rates are USD per one million tokens.
type Rates struct {
	Input  float64
	Output float64
}

// DefaultRates applies to models missing from the table.
var DefaultRates = Rates{Input: 1.00, Output: 1.00}

// Azure OpenAI list prices, 2025-04.
var modelRates = map[string]Rates{
	"gpt-4.1":                    {2.00, 8.00},
	"gpt-4.1-mini":               {0.40, 1.60},
	"gpt-4.1-nano":               {0.10, 0.40},
	"gpt-4o-2024-1120":           {2.50, 10.00},
	"gpt-4o-2024-1120-eu":        {2.75, 11.00},
	"gpt-4o-2024-1120-regional":  {2.75, 11.00},
	"gpt-4o-mini-0718":           {0.15, 0.60},
	"gpt-4o-mini-0718-eu":        {0.165, 0.66},
	"gpt-4o-mini-0718-regional":  {0.165, 0.66},
	"gpt-4.5-preview":            {75.00, 150.00},
	"o3":                         {10.00, 40.00},
	"o3-mini":                    {1.10, 4.40},
	"o3-mini-eu":                 {1.21, 4.84},
	"o1":                         {15.00, 60.00},
	"o1-mini":                    {1.10, 4.40},
	"gpt-4o-2024-08-06":          {2.50, 10.00},
	"gpt-4o-2024-08-06-eu":       {2.75, 11.00},
	"gpt-4o-2024-08-06-regional": {2.75, 11.00},
	"gpt-4o-2024-0513":           {5.00, 15.00},
}

// RatesFor looks model up in the rate table.
func RatesFor(model string) (Rates, bool) {
	r, ok := modelRates[strings.TrimSpace(model)]
	if !ok {
		return DefaultRates, false
	}
	return r, true
}

// ComputeCost prices a token pair. usdToThb converts to baht.
func ComputeCost(model string, inputTokens, outputTokens int64, usdToThb float64) types.CostSummary {
	r, _ := RatesFor(model)
	usd := float64(inputTokens)/1e6*r.Input + float64(outputTokens)/1e6*r.Output
	thb := usd * usdToThb
	return types.CostSummary{
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		USD:          usd,
		THB:          thb,
		USDLabel:     fmt.Sprintf("$%.4f", usd),
		THBLabel:     fmt.Sprintf("฿%.2f", thb),
	}
}

// CostFromClaim returns nil when the backend omitted either token total.
func CostFromClaim(c *types.ClaimResult, model string, usdToThb float64) *types.CostSummary {
	if !c.HasTokenTotals() {
		return nil
	}
	s := ComputeCost(model, *c.TotalInputTokens, *c.TotalOutputTokens, usdToThb)
	return &s
}
