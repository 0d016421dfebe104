package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/binopt/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGet_Yaml(t *testing.T) {
	path := writeFile(t, "jobs.yaml", `
- name: hull-put
  spot: "50"
  years: "2"
  volatility: "0.174012"
  steps: 2
  strike: "52"
  rate: "0.05"
  type: put
  diagnostics: true
- spot: "100"
  years: "1"
  volatility: "0.2"
  steps: 10
  strike: "95"
  rate: "0.03"
  dividend: "0.01"
  style: american
`)

	settings, err := Get([]string{"--config", path})
	require.NoError(t, err)
	require.Len(t, settings.Jobs, 2)

	first := settings.Jobs[0]
	assert.Equal(t, "hull-put", first.Name)
	assert.Equal(t, domain.MarketParams{SpotPrice: 50, YearsUntilExpiry: 2, Volatility: 0.174012, TimeSteps: 2}, first.Market)
	assert.Equal(t, domain.Contract{
		StrikePrice:     52,
		RiskFreeRate:    0.05,
		Type:            domain.OptionTypePut,
		Style:           domain.OptionStyleEuropean,
		EmitDiagnostics: true,
	}, first.Contract)

	second := settings.Jobs[1]
	assert.Equal(t, "job-2", second.Name)
	assert.Equal(t, domain.OptionTypeCall, second.Contract.Type)
	assert.Equal(t, domain.OptionStyleAmerican, second.Contract.Style)
	assert.Equal(t, 0.01, second.Contract.DividendYield)
	assert.False(t, second.Contract.EmitDiagnostics)
}

func TestGet_YamlErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "empty list",
			yaml:   "[]",
			errMsg: "no pricing jobs",
		},
		{
			name:   "not a list",
			yaml:   "spot: 1",
			errMsg: "decode yaml config",
		},
		{
			name:   "bad decimal",
			yaml:   `[{name: a, spot: "fifty", years: "1", volatility: "0.2", steps: 2, strike: "1", rate: "0"}]`,
			errMsg: `job "a": incorrect 'spot' param`,
		},
		{
			name:   "missing strike",
			yaml:   `[{spot: "50", years: "1", volatility: "0.2", steps: 2, rate: "0"}]`,
			errMsg: "'strike' param is required",
		},
		{
			name:   "missing volatility",
			yaml:   `[{spot: "50", years: "1", steps: 2, strike: "50", rate: "0"}]`,
			errMsg: "either 'volatility' or 'closes'",
		},
		{
			name:   "negative steps",
			yaml:   `[{spot: "50", years: "1", volatility: "0.2", steps: -3, strike: "50", rate: "0"}]`,
			errMsg: "time steps must be greater than zero",
		},
		{
			name:   "unknown type",
			yaml:   `[{spot: "50", years: "1", volatility: "0.2", steps: 2, strike: "50", rate: "0", type: swap}]`,
			errMsg: "unknown option type",
		},
		{
			name:   "negative dividend",
			yaml:   `[{spot: "50", years: "1", volatility: "0.2", steps: 2, strike: "50", rate: "0", dividend: "-0.1"}]`,
			errMsg: "dividend yield must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "jobs.yaml", tt.yaml)
			_, err := Get([]string{"--config", path})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGet_YamlDefaultSteps(t *testing.T) {
	path := writeFile(t, "jobs.yaml", `[{spot: "50", years: "1", volatility: "0.2", strike: "50", rate: "0"}]`)

	settings, err := Get([]string{"--config", path})
	require.NoError(t, err)
	require.Len(t, settings.Jobs, 1)
	assert.Equal(t, defaultSteps, settings.Jobs[0].Market.TimeSteps)
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.ErrorContains(t, err, "read yaml config")
}

func TestGet_Flags(t *testing.T) {
	settings, err := Get([]string{
		"--spot", "50", "--years", "2", "--volatility", "0.174012", "--steps", "2",
		"--strike", "52", "--rate", "0.05", "--type", "put", "--style", "american",
	})
	require.NoError(t, err)
	require.Len(t, settings.Jobs, 1)

	job := settings.Jobs[0]
	assert.Equal(t, "cli", job.Name)
	assert.Equal(t, 2, job.Market.TimeSteps)
	assert.Equal(t, domain.OptionTypePut, job.Contract.Type)
	assert.Equal(t, domain.OptionStyleAmerican, job.Contract.Style)
	assert.Zero(t, job.Contract.DividendYield)
}

func TestGet_FlagDefaults(t *testing.T) {
	settings, err := Get([]string{"--spot", "100", "--years", "1", "--volatility", "0.3", "--strike", "100"})
	require.NoError(t, err)

	job := settings.Jobs[0]
	assert.Equal(t, defaultSteps, job.Market.TimeSteps)
	assert.Equal(t, domain.OptionTypeCall, job.Contract.Type)
	assert.Equal(t, domain.OptionStyleEuropean, job.Contract.Style)
	assert.Zero(t, job.Contract.RiskFreeRate)
	assert.False(t, settings.Setup)
	assert.Empty(t, settings.ServeAddr)
}

func TestGet_Modes(t *testing.T) {
	settings, err := Get([]string{"--setup"})
	require.NoError(t, err)
	assert.True(t, settings.Setup)
	assert.Equal(t, defaultSetupPath, settings.SetupPath)

	settings, err = Get([]string{"--setup", "--config", "mine.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "mine.yaml", settings.SetupPath)

	settings, err = Get([]string{"--serve", ":8080", "--debug"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", settings.ServeAddr)
	assert.True(t, settings.Debug)
	assert.Empty(t, settings.Jobs)

	_, err = Get(nil)
	assert.ErrorContains(t, err, "--spot is required")
}

func TestGet_VolatilityFromCloses(t *testing.T) {
	var b strings.Builder
	price := 100.0
	for i := 0; i < 60; i++ {
		if i%2 == 0 {
			price *= 1.01
		} else {
			price /= 1.01
		}
		b.WriteString(strconv.FormatFloat(price, 'f', 6, 64))
		b.WriteString("\n")
	}
	closes := writeFile(t, "closes.txt", b.String())

	settings, err := Get([]string{"--spot", "100", "--years", "1", "--closes", closes, "--strike", "100"})
	require.NoError(t, err)
	assert.Greater(t, settings.Jobs[0].Market.Volatility, 0.1)
	assert.Less(t, settings.Jobs[0].Market.Volatility, 0.2)
}
