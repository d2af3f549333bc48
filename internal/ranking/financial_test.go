// internal/ranking/financial_test.go
package ranking

import (
	"math"
	"testing"

	"lending-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialScore_WithinUnitInterval(t *testing.T) {
	weights := []FinancialWeights{
		DefaultFinancialWeights(),
		{InterestRate: 1},
		{Tenure: 2, Amount: 5},
		{InterestRate: 10, Tenure: 10, Amount: 10},
		{InterestRate: 0.01, Tenure: 0, Amount: 3},
	}
	rates := []float64{4, 7.5, 12, 19, 20}
	tenures := []float64{12, 24, 36, 60}
	amounts := []float64{10000, 55000, 500000, 1000000}

	for _, w := range weights {
		for _, r := range rates {
			for _, tn := range tenures {
				for _, a := range amounts {
					score, err := FinancialScore(models.LoanTerms{InterestRate: r, Tenure: tn, Amount: a}, w)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, score, 0.0)
					assert.LessOrEqual(t, score, 1.0)
				}
			}
		}
	}
}

func TestFinancialScore_Defaults(t *testing.T) {
	score, err := FinancialScore(models.LoanTerms{InterestRate: 12, Tenure: 36, Amount: 100000}, DefaultFinancialWeights())
	require.NoError(t, err)

	want := 0.5*0.4 + 0.5*0.3 + (90000.0/990000.0)*0.3
	assert.InDelta(t, want, score, 1e-12)
}

func TestFinancialScore_WeightsNeedNotSumToOne(t *testing.T) {
	terms := models.LoanTerms{InterestRate: 8, Tenure: 48, Amount: 250000}
	a, err := FinancialScore(terms, FinancialWeights{InterestRate: 0.4, Tenure: 0.3, Amount: 0.3})
	require.NoError(t, err)
	b, err := FinancialScore(terms, FinancialWeights{InterestRate: 4, Tenure: 3, Amount: 3})
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-12)
}

func TestFinancialScore_InvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights FinancialWeights
	}{
		{name: "all zero", weights: FinancialWeights{}},
		{name: "negative", weights: FinancialWeights{InterestRate: 1, Tenure: -0.5, Amount: 0.5}},
		{name: "negative sum", weights: FinancialWeights{InterestRate: -1}},
		{name: "NaN", weights: FinancialWeights{InterestRate: math.NaN(), Tenure: 1}},
		{name: "infinite", weights: FinancialWeights{Amount: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FinancialScore(models.LoanTerms{InterestRate: 12, Tenure: 36, Amount: 100000}, tt.weights)
			assert.ErrorIs(t, err, ErrInvalidWeightConfiguration)
		})
	}
}
