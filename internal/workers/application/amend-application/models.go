// internal/workers/application/amend-application/models.go
package amendapplication

import "lending-workers/internal/models"

type Input struct {
	ApplicationID models.ID                   `json:"applicationId"`
	Amendment     models.ApplicationAmendment `json:"amendment"`
}

type Output struct {
	ApplicationID string   `json:"applicationId"`
	FundingStatus string   `json:"fundingStatus"`
	Tags          []string `json:"tags"`
	UpdatedAt     string   `json:"updatedAt"`
	Reindexed     bool     `json:"reindexed"`
}
