// internal/workers/bidding/record-funding/models.go
package recordfunding

import "github.com/shopspring/decimal"

type Input struct {
	BidID  string          `json:"bidId"`
	Amount decimal.Decimal `json:"amount"`
}

type Output struct {
	BidID                string          `json:"bidId"`
	Status               string          `json:"status"`
	FundingReceived      decimal.Decimal `json:"fundingReceived"`
	Outstanding          decimal.Decimal `json:"outstanding"`
	Completed            bool            `json:"completed"`
	OverFunded           bool            `json:"overFunded"`
	Excess               decimal.Decimal `json:"excess"`
	ApplicationID        string          `json:"applicationId"`
	ApplicationRemaining decimal.Decimal `json:"applicationRemaining"`
}
