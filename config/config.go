package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/binopt/internal/domain"
	"github.com/vadiminshakov/binopt/internal/volatility"
)

const (
	defaultSteps     = 100
	defaultSetupPath = "binopt.yaml"
)

// Config single pricing job ready for the pricer.
type Config struct {
	Name     string
	Market   domain.MarketParams
	Contract domain.Contract
}

// Job pricing job as written in YAML. Numbers are strings parsed as decimals.
type Job struct {
	Name           string `yaml:"name,omitempty"`
	Spot           string `yaml:"spot"`
	Years          string `yaml:"years"`
	Volatility     string `yaml:"volatility,omitempty"`
	Closes         string `yaml:"closes,omitempty"`
	PeriodsPerYear int    `yaml:"periods_per_year,omitempty"`
	Steps          int    `yaml:"steps"`
	Strike         string `yaml:"strike"`
	Rate           string `yaml:"rate"`
	Dividend       string `yaml:"dividend,omitempty"`
	Type           string `yaml:"type,omitempty"`
	Style          string `yaml:"style,omitempty"`
	Diagnostics    bool   `yaml:"diagnostics,omitempty"`
}

// Settings everything the command needs to decide what to run.
type Settings struct {
	Jobs []Config
	// Setup runs the wizard and writes the job to SetupPath.
	Setup     bool
	SetupPath string
	// ServeAddr starts the HTTP endpoint when set.
	ServeAddr string
	Debug     bool
}

// Get parses command-line arguments. Jobs come from --config when given, otherwise from pricing flags.
func Get(args []string) (*Settings, error) {
	fs := flag.NewFlagSet("binopt", flag.ContinueOnError)

	configPath := fs.String("config", "", "path to yaml config with pricing jobs")
	setup := fs.Bool("setup", false, "run the interactive wizard and write a yaml config (to --config or binopt.yaml)")
	serve := fs.String("serve", "", "serve the HTTP pricing endpoint on this address, example: :8080")
	debug := fs.Bool("debug", false, "development logging")

	var job Job
	fs.StringVar(&job.Spot, "spot", "", "spot price of the underlying, example: 50")
	fs.StringVar(&job.Years, "years", "", "years until expiry, example: 2")
	fs.StringVar(&job.Volatility, "volatility", "", "annualized volatility, example: 0.174012")
	fs.StringVar(&job.Closes, "closes", "", "file with closing prices to estimate volatility from")
	fs.IntVar(&job.PeriodsPerYear, "periods-per-year", volatility.DefaultPeriodsPerYear, "closes per year, used with --closes")
	fs.IntVar(&job.Steps, "steps", defaultSteps, "number of lattice time steps")
	fs.StringVar(&job.Strike, "strike", "", "strike price, example: 52")
	fs.StringVar(&job.Rate, "rate", "0", "continuously compounded risk-free rate, example: 0.05")
	fs.StringVar(&job.Dividend, "dividend", "0", "continuous dividend yield, example: 0.01")
	fs.StringVar(&job.Type, "type", domain.OptionTypeCall.String(), "option type: call or put")
	fs.StringVar(&job.Style, "style", domain.OptionStyleEuropean.String(), "option style: european or american")
	fs.BoolVar(&job.Diagnostics, "diagnostics", false, "log the priced lattice and valuation cross-check")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	settings := &Settings{Debug: *debug, ServeAddr: *serve}

	if *setup {
		settings.Setup = true
		settings.SetupPath = *configPath
		if settings.SetupPath == "" {
			settings.SetupPath = defaultSetupPath
		}
		return settings, nil
	}

	if settings.ServeAddr != "" {
		return settings, nil
	}

	if *configPath != "" {
		jobs, err := getYaml(*configPath)
		if err != nil {
			return nil, err
		}
		settings.Jobs = jobs
		return settings, nil
	}

	if job.Spot == "" {
		return nil, errors.New("either --config, --setup, --serve or --spot is required")
	}
	job.Name = "cli"
	c, err := job.Resolve()
	if err != nil {
		return nil, err
	}
	settings.Jobs = []Config{c}

	return settings, nil
}

func getYaml(path string) ([]Config, error) {
	var jobs []Job

	f, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read yaml config")
	}
	if err := yaml.Unmarshal(f, &jobs); err != nil {
		return nil, errors.Wrap(err, "decode yaml config")
	}
	if len(jobs) == 0 {
		return nil, errors.Errorf("no pricing jobs in %s", path)
	}

	configs := make([]Config, 0, len(jobs))
	for i, j := range jobs {
		if j.Name == "" {
			j.Name = fmt.Sprintf("job-%d", i+1)
		}
		c, err := j.Resolve()
		if err != nil {
			return nil, errors.Wrapf(err, "job %q", j.Name)
		}
		configs = append(configs, c)
	}

	return configs, nil
}

// Resolve parses the job, fills defaults and validates it.
func (j Job) Resolve() (Config, error) {
	spot, err := parseDecimal("spot", j.Spot)
	if err != nil {
		return Config{}, err
	}
	years, err := parseDecimal("years", j.Years)
	if err != nil {
		return Config{}, err
	}
	strike, err := parseDecimal("strike", j.Strike)
	if err != nil {
		return Config{}, err
	}
	rate, err := parseDecimal("rate", j.Rate)
	if err != nil {
		return Config{}, err
	}

	dividend := decimal.Zero
	if j.Dividend != "" {
		dividend, err = parseDecimal("dividend", j.Dividend)
		if err != nil {
			return Config{}, err
		}
	}

	sigma, err := j.volatility()
	if err != nil {
		return Config{}, err
	}

	optionType := domain.OptionTypeCall
	if j.Type != "" {
		optionType, err = domain.ParseOptionType(j.Type)
		if err != nil {
			return Config{}, err
		}
	}
	optionStyle := domain.OptionStyleEuropean
	if j.Style != "" {
		optionStyle, err = domain.ParseOptionStyle(j.Style)
		if err != nil {
			return Config{}, err
		}
	}

	steps := j.Steps
	if steps == 0 {
		steps = defaultSteps
	}

	c := Config{
		Name: j.Name,
		Market: domain.MarketParams{
			SpotPrice:        spot.InexactFloat64(),
			YearsUntilExpiry: years.InexactFloat64(),
			Volatility:       sigma,
			TimeSteps:        steps,
		},
		Contract: domain.Contract{
			StrikePrice:     strike.InexactFloat64(),
			RiskFreeRate:    rate.InexactFloat64(),
			DividendYield:   dividend.InexactFloat64(),
			Type:            optionType,
			Style:           optionStyle,
			EmitDiagnostics: j.Diagnostics,
		},
	}

	if err := c.Market.Validate(); err != nil {
		return Config{}, err
	}
	if err := c.Contract.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// volatility returns the explicit volatility or estimates it from the closes file.
func (j Job) volatility() (float64, error) {
	if j.Volatility != "" {
		v, err := parseDecimal("volatility", j.Volatility)
		if err != nil {
			return 0, err
		}
		return v.InexactFloat64(), nil
	}
	if j.Closes == "" {
		return 0, errors.New("either 'volatility' or 'closes' param is required")
	}

	closes, err := volatility.ReadCloses(j.Closes)
	if err != nil {
		return 0, err
	}
	periods := j.PeriodsPerYear
	if periods == 0 {
		periods = volatility.DefaultPeriodsPerYear
	}
	v, err := volatility.Historical(closes, periods)
	if err != nil {
		return 0, errors.Wrap(err, "estimate volatility")
	}
	return v, nil
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, errors.Errorf("'%s' param is required", name)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "incorrect '%s' param (must be a decimal)", name)
	}
	return d, nil
}
