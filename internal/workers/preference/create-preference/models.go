// internal/workers/preference/create-preference/models.go
package createpreference

import "lending-workers/internal/models"

type Input struct {
	Preference models.InvestorPreference `json:"preference"`
}

type Output struct {
	PreferenceID   string   `json:"preferenceId"`
	Preferences    []string `json:"preferences"`
	UnknownSectors []string `json:"unknownSectors,omitempty"`
	CreatedAt      string   `json:"createdAt"`
}
