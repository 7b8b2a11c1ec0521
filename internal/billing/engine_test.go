package billing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{PricePerKwh: "0.15", InitialBill: "50.00"})
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	t.Run("should reject a malformed price", func(t *testing.T) {
		_, err := NewEngine(Config{PricePerKwh: "not-a-number", InitialBill: "50.00"})
		assert.Error(t, err)
	})

	t.Run("should reject a malformed initial bill", func(t *testing.T) {
		_, err := NewEngine(Config{PricePerKwh: "0.15", InitialBill: "fifty"})
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	e := newTestEngine(t)

	t.Run("should accept zero and positive finite readings", func(t *testing.T) {
		for _, v := range []float64{0, 0.001, 10, 50, 1e6} {
			assert.NoError(t, e.Validate(v), "value %v", v)
		}
	})

	t.Run("should reject NaN, infinities and negatives", func(t *testing.T) {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.01, -5} {
			assert.ErrorIs(t, e.Validate(v), ErrInvalidReading, "value %v", v)
		}
	})

	t.Run("should apply the cap only when configured", func(t *testing.T) {
		capped, err := NewEngine(Config{PricePerKwh: "0.15", InitialBill: "50.00", MaxReading: 50})
		require.NoError(t, err)

		assert.NoError(t, capped.Validate(50))
		assert.ErrorIs(t, capped.Validate(50.01), ErrInvalidReading)
		assert.NoError(t, e.Validate(50.01))
	})
}

func TestCost(t *testing.T) {
	e := newTestEngine(t)

	t.Run("should multiply reading by price per kWh", func(t *testing.T) {
		assert.True(t, e.Cost(10).Equal(decimal.RequireFromString("1.5")))
	})

	t.Run("should not round the cost", func(t *testing.T) {
		assert.True(t, e.Cost(1.234567).Equal(decimal.RequireFromString("0.18518505")))
	})
}

func TestAccumulate(t *testing.T) {
	e := newTestEngine(t)

	t.Run("should add cost to the client total", func(t *testing.T) {
		total, err := e.Accumulate("50.00", e.Cost(10))
		require.NoError(t, err)
		assert.Equal(t, "51.50", total.StringFixed(2))
	})

	t.Run("should round half away from zero to two decimals", func(t *testing.T) {
		// 50.00 + 1.234567*0.15 = 50.18518505 -> 50.19
		total, err := e.Accumulate("50.00", e.Cost(1.234567))
		require.NoError(t, err)
		assert.Equal(t, "50.19", total.StringFixed(2))

		// exact midpoint rounds up
		total, err = e.Accumulate("0.005", decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "0.01", total.StringFixed(2))
	})

	t.Run("should reject a malformed client total", func(t *testing.T) {
		_, err := e.Accumulate("fifty quid", e.Cost(10))
		assert.Error(t, err)
	})
}

func TestFormatGBP(t *testing.T) {
	assert.Equal(t, "£51.50", FormatGBP(decimal.RequireFromString("51.5")))
	assert.Equal(t, "£0.00", FormatGBP(decimal.Zero))
	assert.Equal(t, "-£3.25", FormatGBP(decimal.RequireFromString("-3.25")))
}

func TestInitialBill(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, "50.00", e.InitialBill().StringFixed(2))
}
