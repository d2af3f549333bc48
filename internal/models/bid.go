// internal/models/bid.go
package models

import "github.com/shopspring/decimal"

const (
	BidStatusPending   = "pending"
	BidStatusFinalized = "finalized"
	BidStatusCompleted = "completed"
)

// Bid is an investor's offer to fund an application.
type Bid struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	ApplicationID     ID              `json:"applicationId"`
	LoanAmount        decimal.Decimal `json:"loanAmount"`
	InterestRate      Number          `json:"interestRate"`
	Tenure            Number          `json:"tenure"`
	AdditionalDetails string          `json:"additionalDetails,omitempty"`
	Status            string          `json:"status"`
	FundingReceived   decimal.Decimal `json:"fundingReceived"`
	CreatedAt         string          `json:"createdAt,omitempty"`
	UpdatedAt         string          `json:"updatedAt,omitempty"`
}

// Outstanding is the amount still to be funded, never negative.
func (b *Bid) Outstanding() decimal.Decimal {
	rest := b.LoanAmount.Sub(b.FundingReceived)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// FundingResult describes the effect of recording a payment against a bid.
type FundingResult struct {
	Bid                  Bid             `json:"bid"`
	Completed            bool            `json:"completed"`
	OverFunded           bool            `json:"overFunded"`
	Excess               decimal.Decimal `json:"excess"`
	ApplicationID        ID              `json:"applicationId"`
	ApplicationRemaining decimal.Decimal `json:"applicationRemaining"`
}
