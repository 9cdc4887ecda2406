package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dealdesk/internal/negotiation/models"
)

func gbp(amount float64) models.Money {
	return models.MoneyFromFloat(amount, "GBP")
}

func enhancementsWithValues(values ...float64) []models.Enhancement {
	out := make([]models.Enhancement, len(values))
	for i, v := range values {
		out[i] = models.Enhancement{
			Title: string(rune('A' + i)),
			Type:  models.EnhancementTypeRequest,
			Value: decimal.NewFromFloat(v),
		}
	}
	return out
}

func TestRateOnLine(t *testing.T) {
	limit := models.NewLimit(decimal.Zero, decimal.NewFromFloat(0.10), true)

	t.Run("premium over insured limit as a percentage", func(t *testing.T) {
		rol := RateOnLine(gbp(1_000_000), gbp(1_000), limit)
		assert.True(t, rol.Equal(decimal.NewFromInt(1)), "got %s", rol)
	})

	t.Run("zero enterprise value returns zero", func(t *testing.T) {
		rol := RateOnLine(gbp(0), gbp(1_000), limit)
		assert.True(t, rol.IsZero(), "got %s", rol)
	})

	t.Run("zero premium returns zero", func(t *testing.T) {
		rol := RateOnLine(gbp(1_000_000), gbp(0), limit)
		assert.True(t, rol.IsZero(), "got %s", rol)
	})

	t.Run("zero upper bound returns zero", func(t *testing.T) {
		flat := models.NewLimit(decimal.Zero, decimal.Zero, false)
		rol := RateOnLine(gbp(1_000_000), gbp(1_000), flat)
		assert.True(t, rol.IsZero(), "got %s", rol)
	})
}

func TestEnhancementValue(t *testing.T) {
	t.Run("sums premium impact over the list", func(t *testing.T) {
		value := EnhancementValue(gbp(1_000), enhancementsWithValues(0.05, 0.05, 0.05))
		assert.True(t, value.Equal(decimal.NewFromInt(150)), "got %s", value)
	})

	t.Run("zero premium returns zero", func(t *testing.T) {
		value := EnhancementValue(gbp(0), enhancementsWithValues(0.05))
		assert.True(t, value.IsZero())
	})

	t.Run("empty list returns zero", func(t *testing.T) {
		value := EnhancementValue(gbp(1_000), nil)
		assert.True(t, value.IsZero())
	})
}

func TestEnhancementValueString(t *testing.T) {
	t.Run("trims trailing zeros", func(t *testing.T) {
		got := EnhancementValueString(gbp(1_000), enhancementsWithValues(0.05, 0.05, 0.05))
		assert.Equal(t, "150", got)
	})

	t.Run("zero premium renders lowercase n/a", func(t *testing.T) {
		got := EnhancementValueString(gbp(0), enhancementsWithValues(0.05, 0.05, 0.05))
		assert.Equal(t, "n/a", got)
	})

	t.Run("true zero result with non-zero premium renders 0", func(t *testing.T) {
		got := EnhancementValueString(gbp(1_000), enhancementsWithValues(0))
		assert.Equal(t, "0", got)
	})
}

func TestTotal(t *testing.T) {
	total := Total(gbp(1_000), enhancementsWithValues(0.05), gbp(200))
	assert.True(t, total.Equal(decimal.NewFromInt(1250)), "got %s", total)
}

func TestTotalString(t *testing.T) {
	t.Run("two decimal places", func(t *testing.T) {
		got := TotalString(gbp(3_333), enhancementsWithValues(0.01, 0.033, 0.05), gbp(1_000))
		assert.Equal(t, "4642.97", got)
	})

	t.Run("zero premium and fee renders capitalized N/A", func(t *testing.T) {
		got := TotalString(gbp(0), enhancementsWithValues(0.05, 0.05, 0.05), gbp(0))
		assert.Equal(t, "N/A", got)
	})

	t.Run("zero premium with non-zero fee is a real total", func(t *testing.T) {
		got := TotalString(gbp(0), enhancementsWithValues(0.05), gbp(500))
		assert.Equal(t, "500", got)
	})
}
