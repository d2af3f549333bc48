// internal/workers/bidding/finalize-bid/models.go
package finalizebid

import "github.com/shopspring/decimal"

type Input struct {
	BidID string `json:"bidId"`
}

type Output struct {
	BidID         string          `json:"bidId"`
	Status        string          `json:"status"`
	LoanAmount    decimal.Decimal `json:"loanAmount"`
	ApplicationID string          `json:"applicationId"`
	FundingStatus string          `json:"fundingStatus"`
}
