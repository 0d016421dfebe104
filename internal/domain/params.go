package domain

import (
	"github.com/pkg/errors"
)

// MarketParams inputs that fix the lattice geometry.
type MarketParams struct {
	SpotPrice        float64
	YearsUntilExpiry float64
	Volatility       float64
	TimeSteps        int
}

// Validate reports the first parameter that the pricer cannot accept.
func (m MarketParams) Validate() error {
	if m.SpotPrice <= 0 {
		return errors.Errorf("spot price must be greater than zero, got %v", m.SpotPrice)
	}
	if m.YearsUntilExpiry <= 0 {
		return errors.Errorf("years until expiry must be greater than zero, got %v", m.YearsUntilExpiry)
	}
	if m.Volatility <= 0 {
		return errors.Errorf("volatility must be greater than zero, got %v", m.Volatility)
	}
	if m.TimeSteps <= 0 {
		return errors.Errorf("time steps must be greater than zero, got %d", m.TimeSteps)
	}
	return nil
}

// Contract per-call pricing inputs. Every field is explicit, there are no implied defaults.
type Contract struct {
	StrikePrice     float64
	RiskFreeRate    float64
	DividendYield   float64
	Type            OptionType
	Style           OptionStyle
	EmitDiagnostics bool
}

// Validate reports the first contract field that the pricer cannot accept.
func (c Contract) Validate() error {
	if c.StrikePrice <= 0 {
		return errors.Errorf("strike price must be greater than zero, got %v", c.StrikePrice)
	}
	if c.DividendYield < 0 {
		return errors.Errorf("dividend yield must not be negative, got %v", c.DividendYield)
	}
	if !c.Type.IsValid() {
		return errors.Errorf("invalid option type %q", c.Type)
	}
	if !c.Style.IsValid() {
		return errors.Errorf("invalid option style %q", c.Style)
	}
	return nil
}
