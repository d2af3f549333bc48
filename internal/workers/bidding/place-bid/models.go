// internal/workers/bidding/place-bid/models.go
package placebid

import (
	"lending-workers/internal/models"

	"github.com/shopspring/decimal"
)

type Input struct {
	UserID            string          `json:"userId"`
	ApplicationID     models.ID       `json:"applicationId"`
	LoanAmount        decimal.Decimal `json:"loanAmount"`
	InterestRate      models.Number   `json:"interestRate"`
	Tenure            models.Number   `json:"tenure"`
	AdditionalDetails string          `json:"additionalDetails"`
}

type Output struct {
	BidID         string          `json:"bidId"`
	ApplicationID string          `json:"applicationId"`
	Status        string          `json:"status"`
	LoanAmount    decimal.Decimal `json:"loanAmount"`
	CreatedAt     string          `json:"createdAt"`
}
