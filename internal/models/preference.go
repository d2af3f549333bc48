// internal/models/preference.go
package models

import "encoding/json"

// InvestorPreference is what an investor is looking for. Only Preferences
// participates in scoring; the rest is profile data.
type InvestorPreference struct {
	ID                 ID       `json:"id"`
	UserID             string   `json:"userId,omitempty"`
	Preferences        []string `json:"preferences"`
	AmountToInvest     Number   `json:"amountToInvest,omitempty"`
	InvestmentDuration string   `json:"investmentDuration,omitempty"`
	Goals              string   `json:"goals,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts "preferencesId" as an alias of "id".
func (p *InvestorPreference) UnmarshalJSON(b []byte) error {
	type plain InvestorPreference
	aux := struct {
		*plain
		PreferencesID ID `json:"preferencesId"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.PreferencesID
	}
	return nil
}

// PreferenceSet returns the preferences as a set.
func (p *InvestorPreference) PreferenceSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Preferences))
	for _, pref := range p.Preferences {
		set[pref] = struct{}{}
	}
	return set
}

// Sectors the intake form offers investors.
var KnownSectors = []string{
	"Technology",
	"Manufacturing",
	"Healthcare",
	"Agribusiness",
	"Renewable-Energy",
	"Education",
	"E-commerce",
	"Infrastructure",
	"Financial-Services",
	"Consumer-Goods",
	"Artisanal-and-Handicrafts",
	"Sustainable-and-Social-Enterprises",
}
