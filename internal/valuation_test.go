package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vadiminshakov/binopt/config"
	"github.com/vadiminshakov/binopt/internal/domain"
)

func hullJob(style domain.OptionStyle) config.Config {
	return config.Config{
		Name:   "hull",
		Market: domain.MarketParams{SpotPrice: 50, YearsUntilExpiry: 2, Volatility: 0.174012, TimeSteps: 2},
		Contract: domain.Contract{
			StrikePrice:  52,
			RiskFreeRate: 0.05,
			Type:         domain.OptionTypePut,
			Style:        style,
		},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		style         domain.OptionStyle
		expectedPrice float64
		withReference bool
	}{
		{name: "European", style: domain.OptionStyleEuropean, expectedPrice: 3.2450799047840526, withReference: true},
		{name: "American", style: domain.OptionStyleAmerican, expectedPrice: 4.202347410131512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)

			result, err := Evaluate(zap.New(core), hullJob(tt.style))
			require.NoError(t, err)

			assert.Equal(t, "hull", result.Name)
			assert.InDelta(t, tt.expectedPrice, result.Price, 1e-12)
			if tt.withReference {
				require.NotNil(t, result.BlackScholes)
				assert.Greater(t, *result.BlackScholes, 0.0)
			} else {
				assert.Nil(t, result.BlackScholes)
			}

			entries := logs.FilterMessage("option priced").All()
			require.Len(t, entries, 1)
			assert.Equal(t, "hull", entries[0].ContextMap()["job"])
		})
	}
}

func TestEvaluate_NilLogger(t *testing.T) {
	result, err := Evaluate(nil, hullJob(domain.OptionStyleEuropean))
	require.NoError(t, err)
	assert.InDelta(t, 3.2450799047840526, result.Price, 1e-12)
}

func TestEvaluate_NonFinitePrice(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	// u^j and d^(i-j) overflow and underflow in the middle of the tree.
	job := config.Config{
		Name:   "overflow",
		Market: domain.MarketParams{SpotPrice: 100, YearsUntilExpiry: 1, Volatility: 100, TimeSteps: 400},
		Contract: domain.Contract{
			StrikePrice:  100,
			RiskFreeRate: 0.05,
			Type:         domain.OptionTypeCall,
			Style:        domain.OptionStyleEuropean,
		},
	}
	require.NoError(t, job.Market.Validate())

	_, err := Evaluate(zap.New(core), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not finite")
	assert.Zero(t, logs.FilterMessage("option priced").Len())
}
