package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moyoez/claimdesk/types"
)

func TestComputeCost(t *testing.T) {
	c := ComputeCost("gpt-4.1-mini", 1000, 200, 35)
	assert.InDelta(t, 0.00072, c.USD, 1e-12)
	assert.InDelta(t, 0.0252, c.THB, 1e-12)
	assert.Equal(t, "$0.0007", c.USDLabel)
	assert.Equal(t, "฿0.03", c.THBLabel)
	assert.Equal(t, "gpt-4.1-mini", c.Model)
}

func TestRatesFor(t *testing.T) {
	r, ok := RatesFor("o3")
	assert.True(t, ok)
	assert.Equal(t, Rates{Input: 10, Output: 40}, r)

	r, ok = RatesFor("some-new-model")
	assert.False(t, ok)
	assert.Equal(t, DefaultRates, r)
}

func TestComputeCostUnknownModel(t *testing.T) {
	c := ComputeCost("mystery", 2_000_000, 1_000_000, 35)
	assert.InDelta(t, 3.0, c.USD, 1e-9)
	assert.Equal(t, "$3.0000", c.USDLabel)
	assert.Equal(t, "฿105.00", c.THBLabel)
}

func TestCostFromClaim(t *testing.T) {
	assert.Nil(t, CostFromClaim(nil, "gpt-4.1", 35))
	assert.Nil(t, CostFromClaim(&types.ClaimResult{TotalInputTokens: i64Ptr(5)}, "gpt-4.1", 35))

	c := CostFromClaim(&types.ClaimResult{TotalInputTokens: i64Ptr(0), TotalOutputTokens: i64Ptr(0)}, "gpt-4.1", 35)
	if assert.NotNil(t, c) {
		assert.Equal(t, "$0.0000", c.USDLabel)
		assert.Equal(t, "฿0.00", c.THBLabel)
	}
}

func TestNewDateBanner(t *testing.T) {
	b := NewDateBanner(eligible(12))
	assert.True(t, b.Eligible)
	assert.Equal(t, 12, b.Days)
	assert.Contains(t, b.English, "within")
	assert.Contains(t, b.Thai, "12")
}
