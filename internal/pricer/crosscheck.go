package pricer

import (
	"math"

	"github.com/vadiminshakov/binopt/internal/domain"
	"github.com/vadiminshakov/binopt/internal/lattice"
)

// Mismatch node where the two valuation formulas disagree beyond tolerance.
type Mismatch struct {
	Step        int
	Node        int
	Portfolio   float64
	RiskNeutral float64
}

// riskNeutralValue discounts the expectation of the children under the risk-neutral probability.
func riskNeutralValue(g Geometry, rate, dividend, valueUp, valueDown float64) float64 {
	p := (math.Exp((rate-dividend)*g.DeltaT) - g.DownFactor) / (g.UpFactor - g.DownFactor)
	return math.Exp(-rate*g.DeltaT) * (p*valueUp + (1-p)*valueDown)
}

// CrossCheck recomputes the continuation value of every internal node of a priced lattice
// with both formulas and returns the nodes where they diverge. It reads children values only,
// so early exercise decisions never depend on it.
func CrossCheck(tree *lattice.Lattice, g Geometry, c domain.Contract, tolerance float64) []Mismatch {
	var mismatches []Mismatch
	for i := tree.LevelCount() - 2; i >= 0; i-- {
		next := tree.Level(i + 1)
		for j := 0; j < tree.Level(i).Len(); j++ {
			up, down := next.Node(j+1).OptionValue, next.Node(j).OptionValue
			portfolio := portfolioValue(g, c.RiskFreeRate, c.DividendYield, up, down)
			riskNeutral := riskNeutralValue(g, c.RiskFreeRate, c.DividendYield, up, down)
			if math.Abs(portfolio-riskNeutral) > tolerance {
				mismatches = append(mismatches, Mismatch{Step: i, Node: j, Portfolio: portfolio, RiskNeutral: riskNeutral})
			}
		}
	}
	return mismatches
}
