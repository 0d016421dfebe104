// Package report renders priced jobs for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/binopt/internal/domain"
)

const pricePlaces = 4

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	headerStyle = lipgloss.NewStyle().Foreground(highlight).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Result priced job.
type Result struct {
	Name     string
	Market   domain.MarketParams
	Contract domain.Contract
	Price    float64
	// BlackScholes closed-form reference, nil for American contracts.
	BlackScholes *float64
}

// FormatPrice rounds a price for display. NaN and infinities are printed as is.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(pricePlaces)
}

// Write prints the results as a table.
func Write(w io.Writer, results []Result) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		reference := "-"
		if r.BlackScholes != nil {
			reference = FormatPrice(*r.BlackScholes)
		}
		rows = append(rows, []string{
			r.Name,
			r.Contract.Type.String(),
			r.Contract.Style.String(),
			strconv.Itoa(r.Market.TimeSteps),
			FormatPrice(r.Price),
			reference,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(highlight)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("JOB", "TYPE", "STYLE", "STEPS", "PRICE", "BLACK-SCHOLES").
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
