package internal

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/binopt/config"
	"github.com/vadiminshakov/binopt/internal/domain"
	"github.com/vadiminshakov/binopt/internal/pricer"
	"github.com/vadiminshakov/binopt/internal/report"
)

// Evaluate prices one job on a fresh lattice and attaches the closed-form reference for European contracts.
// Inputs that pass validation can still overflow the lattice (huge volatility over many steps),
// so a non-finite price is returned as an error.
func Evaluate(logger *zap.Logger, job config.Config) (report.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	jobLogger := logger.With(zap.String("job", job.Name))

	started := time.Now()
	p := pricer.New(jobLogger)
	p.Initialize(job.Market)
	price := p.Price(job.Contract)
	if !isFinite(price) {
		return report.Result{}, errors.Errorf("lattice price is not finite (%v), reduce volatility, horizon or steps", price)
	}

	result := report.Result{
		Name:     job.Name,
		Market:   job.Market,
		Contract: job.Contract,
		Price:    price,
	}
	if job.Contract.Style == domain.OptionStyleEuropean {
		reference := pricer.BlackScholes(job.Market, job.Contract)
		if !isFinite(reference) {
			return report.Result{}, errors.Errorf("black-scholes reference is not finite (%v)", reference)
		}
		result.BlackScholes = &reference
	}

	jobLogger.Info("option priced",
		zap.Float64("spot", job.Market.SpotPrice),
		zap.Float64("years", job.Market.YearsUntilExpiry),
		zap.Float64("volatility", job.Market.Volatility),
		zap.Int("steps", job.Market.TimeSteps),
		zap.Float64("strike", job.Contract.StrikePrice),
		zap.Float64("rate", job.Contract.RiskFreeRate),
		zap.Float64("dividend", job.Contract.DividendYield),
		zap.Stringer("type", job.Contract.Type),
		zap.Stringer("style", job.Contract.Style),
		zap.Float64("price", price),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
