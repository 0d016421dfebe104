package pricer

import (
	"math"

	"github.com/vadiminshakov/binopt/internal/domain"
)

// BlackScholes returns the closed-form price of a European option with a continuous dividend yield.
// It is the limit the lattice price converges to as the step count grows.
func BlackScholes(m domain.MarketParams, c domain.Contract) float64 {
	s, k, t := m.SpotPrice, c.StrikePrice, m.YearsUntilExpiry
	r, q, v := c.RiskFreeRate, c.DividendYield, m.Volatility

	d1 := (math.Log(s/k) + (r-q+0.5*v*v)*t) / (v * math.Sqrt(t))
	d2 := d1 - v*math.Sqrt(t)

	if c.Type == domain.OptionTypePut {
		return k*math.Exp(-r*t)*normCdf(-d2) - s*math.Exp(-q*t)*normCdf(-d1)
	}
	return s*math.Exp(-q*t)*normCdf(d1) - k*math.Exp(-r*t)*normCdf(d2)
}

// normCdf standard normal cumulative distribution function
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
