// Package volatility estimates the volatility input of the pricer from a history of closing prices.
// It uses the cinar/indicator library for the moving standard deviation.
package volatility

import (
	"math"
	"os"
	"strings"

	"github.com/cinar/indicator/v2/helper"
	movingstd "github.com/cinar/indicator/v2/volatility"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultPeriodsPerYear trading days used to annualize daily closes.
const DefaultPeriodsPerYear = 252

const minCloses = 3

// Historical returns the annualized sample standard deviation of log returns over the whole window.
// cinar's MovingStd divides by n, so the result is rescaled by sqrt(n/(n-1)).
func Historical(closes []decimal.Decimal, periodsPerYear int) (float64, error) {
	if len(closes) < minCloses {
		return 0, errors.Errorf("not enough closes: need at least %d, got %d", minCloses, len(closes))
	}
	if periodsPerYear <= 0 {
		return 0, errors.Errorf("periods per year must be greater than zero, got %d", periodsPerYear)
	}

	returns, err := logReturns(closes)
	if err != nil {
		return 0, err
	}

	std := movingstd.NewMovingStdWithPeriod[float64](len(returns))
	out := helper.ChanToSlice(std.Compute(helper.SliceToChan(returns)))
	if len(out) == 0 {
		return 0, errors.New("moving standard deviation produced no value")
	}

	n := float64(len(returns))
	sample := out[len(out)-1] * math.Sqrt(n/(n-1))
	estimate := sample * math.Sqrt(float64(periodsPerYear))
	if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		return 0, errors.Errorf("volatility estimate is not finite: %v", estimate)
	}

	return estimate, nil
}

// logReturns converts closes to ln(c[k]/c[k-1]).
func logReturns(closes []decimal.Decimal) ([]float64, error) {
	returns := make([]float64, 0, len(closes)-1)
	prev := 0.0
	for i, c := range closes {
		if !c.IsPositive() {
			return nil, errors.Errorf("close #%d must be greater than zero, got %s", i+1, c.String())
		}
		f, _ := c.Float64()
		if i > 0 {
			returns = append(returns, math.Log(f/prev))
		}
		prev = f
	}
	return returns, nil
}

// ReadCloses reads one close per line. Blank lines and lines starting with # are skipped.
func ReadCloses(path string) ([]decimal.Decimal, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read closes file")
	}

	var closes []decimal.Decimal
	for n, line := range strings.Split(string(f), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := decimal.NewFromString(line)
		if err != nil {
			return nil, errors.Wrapf(err, "incorrect close on line %d of %s", n+1, path)
		}
		closes = append(closes, c)
	}

	return closes, nil
}
