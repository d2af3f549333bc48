// internal/ranking/normalize.go
package ranking

// Domain anchors for the financial dimensions. Values outside the anchors
// are still mapped linearly and land outside [0,1].
const (
	MinInterestRate = 4.0
	MaxInterestRate = 20.0

	MinTenureMonths = 12.0
	MaxTenureMonths = 60.0

	MinLoanAmount = 10000.0
	MaxLoanAmount = 1000000.0
)

// NormalizeInterestRate maps an annual rate onto [0,1]. Lower is better.
func NormalizeInterestRate(rate float64) float64 {
	return 1 - (rate-MinInterestRate)/(MaxInterestRate-MinInterestRate)
}

// NormalizeTenure maps a tenure in months onto [0,1].
func NormalizeTenure(months float64) float64 {
	return (months - MinTenureMonths) / (MaxTenureMonths - MinTenureMonths)
}

// NormalizeAmount maps a principal onto [0,1].
func NormalizeAmount(amount float64) float64 {
	return (amount - MinLoanAmount) / (MaxLoanAmount - MinLoanAmount)
}
