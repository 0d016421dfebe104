// Package domain defines the option contract and market inputs shared by the pricer and its callers.
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// OptionType payoff direction of an option.
type OptionType string

const (
	// OptionTypeCall right to buy the underlying at the strike.
	OptionTypeCall OptionType = "call"
	// OptionTypePut right to sell the underlying at the strike.
	OptionTypePut OptionType = "put"
)

// String returns the string representation.
func (t OptionType) String() string {
	return string(t)
}

// IsValid checks if the OptionType value is valid.
func (t OptionType) IsValid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// Payoff returns the exercise value of the option for the given underlying price.
func (t OptionType) Payoff(underlying, strike float64) float64 {
	if t == OptionTypePut {
		return max(strike-underlying, 0)
	}
	return max(underlying-strike, 0)
}

// ParseOptionType converts user input into an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	t := OptionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", errors.Errorf("unknown option type %q, expected call or put", s)
	}
	return t, nil
}

// OptionStyle exercise rights of an option.
type OptionStyle string

const (
	// OptionStyleEuropean exercisable at expiry only.
	OptionStyleEuropean OptionStyle = "european"
	// OptionStyleAmerican exercisable at any node up to expiry.
	OptionStyleAmerican OptionStyle = "american"
)

// String returns the string representation.
func (s OptionStyle) String() string {
	return string(s)
}

// IsValid checks if the OptionStyle value is valid.
func (s OptionStyle) IsValid() bool {
	return s == OptionStyleEuropean || s == OptionStyleAmerican
}

// ParseOptionStyle converts user input into an OptionStyle.
func ParseOptionStyle(s string) (OptionStyle, error) {
	style := OptionStyle(strings.ToLower(strings.TrimSpace(s)))
	if !style.IsValid() {
		return "", errors.Errorf("unknown option style %q, expected european or american", s)
	}
	return style, nil
}
