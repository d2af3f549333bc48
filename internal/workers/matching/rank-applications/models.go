// internal/workers/matching/rank-applications/models.go
package rankapplications

import (
	"lending-workers/internal/models"
	"lending-workers/internal/ranking"
)

// Input names a stored preference or carries one inline. Applications, when
// present (even empty), replace the store lookup.
type Input struct {
	PreferenceID   models.ID                  `json:"preferenceId"`
	Preference     *models.InvestorPreference `json:"preference,omitempty"`
	Applications   []models.Application       `json:"applications,omitempty"`
	Weights        *ranking.FinancialWeights  `json:"weights,omitempty"`
	MaxResults     int                        `json:"maxResults,omitempty"`
	UseSearchIndex *bool                      `json:"useSearchIndex,omitempty"`
}

type Output struct {
	PreferenceID       string                `json:"preferenceId"`
	RankedApplications []ranking.RankedEntry `json:"rankedApplications"`
	TotalCandidates    int                   `json:"totalCandidates"`
	Returned           int                   `json:"returned"`
	MalformedTags      int                   `json:"malformedTags"`
	TopScore           float64               `json:"topScore"`
}
