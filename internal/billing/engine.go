package billing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidReading is returned by Validate for readings that must not
// be billed or stored.
var ErrInvalidReading = errors.New("invalid reading")

// Config holds the engine's fixed rates.
type Config struct {
	// PricePerKwh converts a reading into a cost, e.g. "0.15".
	PricePerKwh string
	// InitialBill is the opening balance pushed to every new connection.
	InitialBill string
	// MaxReading caps a single reading when > 0. Earlier protocol
	// revisions enforced 50; the final revision is unbounded.
	MaxReading float64
}

// Engine validates readings and turns them into rounded bill totals.
// It carries no per-request state.
type Engine struct {
	pricePerKwh decimal.Decimal
	initialBill decimal.Decimal
	maxReading  float64
}

// NewEngine builds an engine from config.
func NewEngine(cfg Config) (*Engine, error) {
	price, err := decimal.NewFromString(cfg.PricePerKwh)
	if err != nil {
		return nil, fmt.Errorf("parse price per kWh %q: %w", cfg.PricePerKwh, err)
	}
	initial, err := decimal.NewFromString(cfg.InitialBill)
	if err != nil {
		return nil, fmt.Errorf("parse initial bill %q: %w", cfg.InitialBill, err)
	}
	return &Engine{
		pricePerKwh: price,
		initialBill: initial,
		maxReading:  cfg.MaxReading,
	}, nil
}

// Validate rejects NaN, infinite and negative readings. Zero and any
// positive finite value pass, subject to the configured cap.
func (e *Engine) Validate(reading float64) error {
	if math.IsNaN(reading) || math.IsInf(reading, 0) {
		return fmt.Errorf("%w: reading must be a finite number", ErrInvalidReading)
	}
	if reading < 0 {
		return fmt.Errorf("%w: reading must not be negative", ErrInvalidReading)
	}
	if e.maxReading > 0 && reading > e.maxReading {
		return fmt.Errorf("%w: reading exceeds maximum of %v kWh", ErrInvalidReading, e.maxReading)
	}
	return nil
}

// Cost returns reading * pricePerKwh, unrounded.
func (e *Engine) Cost(reading float64) decimal.Decimal {
	return decimal.NewFromFloat(reading).Mul(e.pricePerKwh)
}

// Accumulate adds cost to the client-reported running total and rounds
// to 2 decimal places, half away from zero.
func (e *Engine) Accumulate(clientTotal string, cost decimal.Decimal) (decimal.Decimal, error) {
	total, err := decimal.NewFromString(clientTotal)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse current total %q: %w", clientTotal, err)
	}
	return total.Add(cost).Round(2), nil
}

// InitialBill returns the configured opening balance.
func (e *Engine) InitialBill() decimal.Decimal {
	return e.initialBill
}

// FormatGBP renders an amount as an en-GB currency string, e.g. "£51.50".
func FormatGBP(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-£" + d.Neg().StringFixed(2)
	}
	return "£" + d.StringFixed(2)
}
