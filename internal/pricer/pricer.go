// Package pricer values options on a Cox-Ross-Rubinstein binomial lattice.
package pricer

import (
	"math"

	"github.com/vadiminshakov/binopt/internal/domain"
	"github.com/vadiminshakov/binopt/internal/lattice"
	"go.uber.org/zap"
)

// crossCheckTolerance maximum accepted gap between the portfolio and risk-neutral node values.
const crossCheckTolerance = 1e-7

// Geometry lattice parameters derived from market inputs.
type Geometry struct {
	DeltaT     float64
	UpFactor   float64
	DownFactor float64
	SpotPrice  float64
}

// Pricer builds a lattice once per Initialize and prices contracts on it by backward induction.
// A Pricer is not safe for concurrent use; give each goroutine its own.
type Pricer struct {
	logger   *zap.Logger
	geometry Geometry
	tree     *lattice.Lattice
}

// New creates an uninitialized pricer.
func New(logger *zap.Logger) *Pricer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pricer{logger: logger}
}

// Initialize derives the CRR parameters and rebuilds the lattice, discarding previous option values.
// It panics when TimeSteps is not positive.
func (p *Pricer) Initialize(m domain.MarketParams) {
	if m.TimeSteps <= 0 {
		panic("pricer: time steps must be positive")
	}

	deltaT := m.YearsUntilExpiry / float64(m.TimeSteps)
	move := m.Volatility * math.Sqrt(deltaT)

	p.geometry = Geometry{
		DeltaT:     deltaT,
		UpFactor:   math.Exp(move),
		DownFactor: math.Exp(-move),
		SpotPrice:  m.SpotPrice,
	}
	p.tree = lattice.Build(m.SpotPrice, p.geometry.UpFactor, p.geometry.DownFactor, m.TimeSteps)
}

// Initialized reports whether a lattice has been built.
func (p *Pricer) Initialized() bool {
	return p.tree != nil
}

// Geometry returns the parameters derived by the last Initialize.
func (p *Pricer) Geometry() Geometry {
	return p.geometry
}

// Lattice exposes the tree priced by the last Price call.
func (p *Pricer) Lattice() *lattice.Lattice {
	return p.tree
}

// Price fills the lattice with option values and returns the root value.
// It panics when called before Initialize.
func (p *Pricer) Price(c domain.Contract) float64 {
	if p.tree == nil {
		panic("pricer: Price called before Initialize")
	}

	g := p.geometry
	last := p.tree.LevelCount() - 1

	terminal := p.tree.Level(last)
	for j := 0; j < terminal.Len(); j++ {
		n := terminal.Node(j)
		n.OptionValue = c.Type.Payoff(n.UnderlyingPrice(), c.StrikePrice)
	}

	american := c.Style == domain.OptionStyleAmerican
	for i := last - 1; i >= 0; i-- {
		level, next := p.tree.Level(i), p.tree.Level(i+1)
		for j := 0; j < level.Len(); j++ {
			n := level.Node(j)
			value := portfolioValue(g, c.RiskFreeRate, c.DividendYield, next.Node(j+1).OptionValue, next.Node(j).OptionValue)
			if american {
				if intrinsic := c.Type.Payoff(n.UnderlyingPrice(), c.StrikePrice); intrinsic > value {
					value = intrinsic
				}
			}
			n.OptionValue = value
		}
	}

	if c.EmitDiagnostics {
		p.emitDiagnostics(c)
	}

	return p.tree.Root().OptionValue
}

func (p *Pricer) emitDiagnostics(c domain.Contract) {
	for _, m := range CrossCheck(p.tree, p.geometry, c, crossCheckTolerance) {
		p.logger.Warn("node valuation mismatch",
			zap.Int("step", m.Step),
			zap.Int("node", m.Node),
			zap.Float64("portfolio", m.Portfolio),
			zap.Float64("risk_neutral", m.RiskNeutral),
			zap.Float64("diff", math.Abs(m.Portfolio-m.RiskNeutral)),
		)
	}

	step := 0
	for line := range p.tree.Render() {
		p.logger.Info("lattice level", zap.Int("step", step), zap.String("nodes", line))
		step++
	}
}

// portfolioValue values a node by replicating it with a hedged position in the underlying.
// The global spot is used on purpose: it cancels out of the result on a CRR lattice.
func portfolioValue(g Geometry, rate, dividend, valueUp, valueDown float64) float64 {
	spot, up, down := g.SpotPrice, g.UpFactor, g.DownFactor

	delta := (valueUp - valueDown) / (spot * (up - down))
	discounted := (spot*up*delta - valueUp) * math.Exp(-rate*g.DeltaT)

	if dividend == 0 {
		return spot*delta - discounted
	}
	return spot*delta*math.Exp(-dividend*g.DeltaT) - discounted
}
