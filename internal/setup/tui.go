package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/binopt/config"
	"github.com/vadiminshakov/binopt/internal/domain"
)

const wizardTitle = "BINOPT PRICING WIZARD"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers raw wizard input.
type Answers struct {
	Name        string
	Spot        string
	Years       string
	Volatility  string
	Steps       string
	Strike      string
	Rate        string
	Dividend    string
	Type        string
	Style       string
	Diagnostics bool
}

// DefaultAnswers values the wizard starts from.
func DefaultAnswers() Answers {
	return Answers{
		Name:       "wizard",
		Spot:       "50",
		Years:      "2",
		Volatility: "0.174012",
		Steps:      "100",
		Strike:     "52",
		Rate:       "0.05",
		Dividend:   "0",
		Type:       domain.OptionTypeCall.String(),
		Style:      domain.OptionStyleEuropean.String(),
	}
}

// RunTUI launches the terminal wizard and writes the collected job to path.
func RunTUI(path string) error {
	a := DefaultAnswers()
	var confirm bool

	clearScreen()
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Price an option on a binomial lattice.\n"))

	fmt.Println(stepStyle.Render("STEP 1: UNDERLYING"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spot Price").
				Description("Current price of the underlying (e.g. 50)").
				Value(&a.Spot).
				Validate(validatePositive),
			huh.NewInput().
				Title("Volatility").
				Description("Annualized, as a fraction (e.g. 0.2 for 20%)").
				Value(&a.Volatility).
				Validate(validatePositive),
			huh.NewInput().
				Title("Dividend Yield").
				Description("Continuous, as a fraction (0 for none)").
				Value(&a.Dividend).
				Validate(validateNonNegative),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(stepStyle.Render("STEP 2: CONTRACT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Option Type").
				Options(
					huh.NewOption("Call", domain.OptionTypeCall.String()),
					huh.NewOption("Put", domain.OptionTypePut.String()),
				).
				Value(&a.Type),
			huh.NewSelect[string]().
				Title("Exercise Style").
				Options(
					huh.NewOption("European (at expiry only)", domain.OptionStyleEuropean.String()),
					huh.NewOption("American (any time)", domain.OptionStyleAmerican.String()),
				).
				Value(&a.Style),
			huh.NewInput().
				Title("Strike Price").
				Value(&a.Strike).
				Validate(validatePositive),
			huh.NewInput().
				Title("Years Until Expiry").
				Description("e.g. 0.5 for six months").
				Value(&a.Years).
				Validate(validatePositive),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(stepStyle.Render("STEP 3: MODEL"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Risk-Free Rate").
				Description("Continuously compounded (e.g. 0.05)").
				Value(&a.Rate).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Time Steps").
				Description("Lattice depth, more steps converge closer to Black-Scholes").
				Value(&a.Steps).
				Validate(validateSteps),
			huh.NewConfirm().
				Title("Log the priced lattice?").
				Value(&a.Diagnostics),
			huh.NewInput().
				Title("Job Name").
				Value(&a.Name),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render(wizardTitle))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Job: %s\nSpot: %s\nStrike: %s\nYears: %s\nVolatility: %s\nRate: %s\nDividend: %s\nType: %s\nStyle: %s\nSteps: %s\n",
		a.Name, a.Spot, a.Strike, a.Years, a.Volatility, a.Rate, a.Dividend, a.Type, a.Style, a.Steps,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save and price?").
				Affirmative("Yes, save and price").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup cancelled by user")
	}

	job, err := BuildJob(a)
	if err != nil {
		return err
	}
	if err := WriteJobs(path, []config.Job{job}); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s", path)))
	return nil
}

// BuildJob converts wizard answers into a YAML job and checks that it resolves.
func BuildJob(a Answers) (config.Job, error) {
	steps, err := strconv.Atoi(strings.TrimSpace(a.Steps))
	if err != nil {
		return config.Job{}, errors.Wrap(err, "incorrect time steps")
	}

	job := config.Job{
		Name:        strings.TrimSpace(a.Name),
		Spot:        strings.TrimSpace(a.Spot),
		Years:       strings.TrimSpace(a.Years),
		Volatility:  strings.TrimSpace(a.Volatility),
		Steps:       steps,
		Strike:      strings.TrimSpace(a.Strike),
		Rate:        strings.TrimSpace(a.Rate),
		Dividend:    strings.TrimSpace(a.Dividend),
		Type:        a.Type,
		Style:       a.Style,
		Diagnostics: a.Diagnostics,
	}

	if _, err := job.Resolve(); err != nil {
		return config.Job{}, errors.Wrap(err, "invalid wizard answers")
	}

	return job, nil
}

// WriteJobs saves jobs in the format read by --config.
func WriteJobs(path string, jobs []config.Job) error {
	data, err := yaml.Marshal(jobs)
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func validateDecimal(s string) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a valid number")
	}
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateNonNegative(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateSteps(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
