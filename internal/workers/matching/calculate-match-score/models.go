// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import (
	"lending-workers/internal/models"
	"lending-workers/internal/ranking"
)

type Input struct {
	PreferenceID  models.ID                  `json:"preferenceId"`
	Preference    *models.InvestorPreference `json:"preference,omitempty"`
	ApplicationID models.ID                  `json:"applicationId"`
	Application   *models.Application        `json:"application,omitempty"`
	Weights       *ranking.FinancialWeights  `json:"weights,omitempty"`
}

type Output struct {
	ApplicationID string       `json:"applicationId"`
	PreferenceID  string       `json:"preferenceId"`
	MatchScore    float64      `json:"matchScore"`
	MatchFactors  MatchFactors `json:"matchFactors"`
	MatchedTags   []string     `json:"matchedTags"`
}

type MatchFactors struct {
	TagScore       float64 `json:"tagScore"`
	FinancialScore float64 `json:"financialScore"`
	TagBlend       float64 `json:"tagBlend"`
	FinancialBlend float64 `json:"financialBlend"`
}
