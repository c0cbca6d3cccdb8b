package pricing_test

import (
	"testing"

	"soup-server/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	t.Run("Known model input price", func(t *testing.T) {
		// 1М входных токенов gpt-4o стоят ровно цену входа из таблицы
		cost := pricing.ComputeCost("gpt-4o", 1_000_000, 0)
		assert.InDelta(t, 5.0, cost, 1e-9)
	})

	t.Run("Known model combined price", func(t *testing.T) {
		cost := pricing.ComputeCost("gemini-2.5-flash", 1_000_000, 1_000_000)
		assert.InDelta(t, 0.3+2.52, cost, 1e-9)
	})

	t.Run("Unknown model costs zero", func(t *testing.T) {
		cost := pricing.ComputeCost("unknown-model", 100, 100)
		assert.Zero(t, cost)
	})

	t.Run("Zero tokens cost zero", func(t *testing.T) {
		assert.Zero(t, pricing.ComputeCost("gpt-4o", 0, 0))
	})
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "gpt-4o", pricing.Resolve("gpt-4o"))
	assert.Equal(t, pricing.DefaultModel, pricing.Resolve("gpt-3.5-turbo"))
	assert.Equal(t, pricing.DefaultModel, pricing.Resolve(""))
}

func TestPriceFor(t *testing.T) {
	price := pricing.PriceFor("gemini-2.5-pro")
	assert.Equal(t, 1.25, price.InputUSD)
	assert.Equal(t, 10.0, price.OutputUSD)

	assert.Zero(t, pricing.PriceFor("no-such-model").InputUSD)
	assert.Zero(t, pricing.PriceFor("no-such-model").OutputUSD)
}
