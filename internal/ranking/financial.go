// internal/ranking/financial.go
package ranking

import "lending-workers/internal/models"

// FinancialScore is the weighted mean of the normalized loan terms.
func FinancialScore(terms models.LoanTerms, w FinancialWeights) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	return financialScore(terms, w), nil
}

func financialScore(terms models.LoanTerms, w FinancialWeights) float64 {
	weighted := NormalizeInterestRate(terms.InterestRate)*w.InterestRate +
		NormalizeTenure(terms.Tenure)*w.Tenure +
		NormalizeAmount(terms.Amount)*w.Amount
	return weighted / w.Sum()
}
