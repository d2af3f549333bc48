// internal/ranking/config.go
package ranking

import (
	"fmt"
	"math"

	"lending-workers/internal/models"
)

type namedValue struct {
	name  string
	value float64
}

// FinancialWeights are the relative importances of the three financial
// dimensions. They need not sum to 1.
type FinancialWeights struct {
	InterestRate float64 `json:"interestRate" mapstructure:"interest_rate"`
	Tenure       float64 `json:"tenure" mapstructure:"tenure"`
	Amount       float64 `json:"amount" mapstructure:"amount"`
}

func DefaultFinancialWeights() FinancialWeights {
	return FinancialWeights{InterestRate: 0.4, Tenure: 0.3, Amount: 0.3}
}

func (w FinancialWeights) Sum() float64 {
	return w.InterestRate + w.Tenure + w.Amount
}

// Validate rejects weights that are negative, non-finite or sum to zero.
func (w FinancialWeights) Validate() error {
	for _, f := range []namedValue{
		{"interestRate", w.InterestRate},
		{"tenure", w.Tenure},
		{"amount", w.Amount},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: weight %s is not finite", ErrInvalidWeightConfiguration, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: weight %s is negative (%g)", ErrInvalidWeightConfiguration, f.name, f.value)
		}
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidWeightConfiguration)
	}
	return nil
}

// LoanDefaults fill in loan fields an application leaves unset.
type LoanDefaults struct {
	InterestRate float64 `json:"interestRate" mapstructure:"interest_rate"`
	Tenure       float64 `json:"tenure" mapstructure:"tenure"`
	Amount       float64 `json:"amount" mapstructure:"amount"`
}

func DefaultLoanDefaults() LoanDefaults {
	return LoanDefaults{InterestRate: 12, Tenure: 36, Amount: 100000}
}

// RankingConfig holds everything the ranker needs besides its inputs.
type RankingConfig struct {
	Weights        FinancialWeights
	TagBlend       float64
	FinancialBlend float64
	Defaults       LoanDefaults
}

func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		Weights:        DefaultFinancialWeights(),
		TagBlend:       0.7,
		FinancialBlend: 0.3,
		Defaults:       DefaultLoanDefaults(),
	}
}

// WithWeights returns a copy of the config using w.
func (c RankingConfig) WithWeights(w FinancialWeights) RankingConfig {
	c.Weights = w
	return c
}

func (c RankingConfig) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	for _, f := range []namedValue{
		{"tagBlend", c.TagBlend},
		{"financialBlend", c.FinancialBlend},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number (%g)", ErrInvalidWeightConfiguration, f.name, f.value)
		}
	}
	if c.TagBlend+c.FinancialBlend <= 0 {
		return fmt.Errorf("%w: blend factors sum to zero", ErrInvalidWeightConfiguration)
	}
	return nil
}

// LoanTermsOf extracts the scoring inputs of an application, substituting
// defaults for unset (zero) or non-finite fields.
func (c RankingConfig) LoanTermsOf(app *models.Application) models.LoanTerms {
	return models.LoanTerms{
		InterestRate: app.InterestRate.OrDefault(c.Defaults.InterestRate),
		Tenure:       app.LoanTenure.OrDefault(c.Defaults.Tenure),
		Amount:       app.LoanAmount.OrDefault(c.Defaults.Amount),
	}
}
