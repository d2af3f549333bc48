// internal/models/application.go
package models

const (
	FundingStatusPending   = "pending"
	FundingStatusFinalized = "finalized"
)

// Application is a loan application submitted by an SME.
type Application struct {
	ID               ID                     `json:"id"`
	UserID           string                 `json:"userId,omitempty"`
	CompanyName      string                 `json:"companyName,omitempty"`
	ContactPerson    string                 `json:"contactPerson,omitempty"`
	Phone            string                 `json:"phone,omitempty"`
	BusinessType     string                 `json:"businessType,omitempty"`
	YearsInOperation Number                 `json:"yearsInOperation,omitempty"`
	AnnualRevenue    Number                 `json:"annualRevenue,omitempty"`
	LoanAmount       Number                 `json:"loanAmount,omitempty"`
	LoanPurpose      string                 `json:"loanPurpose,omitempty"`
	InterestRate     Number                 `json:"interestRate,omitempty"`
	LoanTenure       Number                 `json:"loanTenure,omitempty"`
	Tags             TagList                `json:"tags"`
	IsSpecial        bool                   `json:"isSpecial,omitempty"`
	FundingReceived  Number                 `json:"fundingReceived"`
	FundingStatus    string                 `json:"fundingStatus,omitempty"`
	Documents        map[string]interface{} `json:"documents,omitempty"`
	CreatedAt        string                 `json:"createdAt,omitempty"`
	UpdatedAt        string                 `json:"updatedAt,omitempty"`
}

// IsFinalized reports whether the application is closed to amendments.
func (a *Application) IsFinalized() bool {
	return a.FundingStatus == FundingStatusFinalized
}

// LoanTerms is the financial slice of an application used for scoring.
type LoanTerms struct {
	InterestRate float64 `json:"interestRate"`
	Tenure       float64 `json:"loanTenure"`
	Amount       float64 `json:"loanAmount"`
}

// ApplicationAmendment carries the fields an SME may change after intake.
// Nil fields are left untouched.
type ApplicationAmendment struct {
	LoanAmount   *Number                `json:"loanAmount,omitempty"`
	InterestRate *Number                `json:"interestRate,omitempty"`
	LoanTenure   *Number                `json:"loanTenure,omitempty"`
	LoanPurpose  *string                `json:"loanPurpose,omitempty"`
	Tags         *TagList               `json:"tags,omitempty"`
	IsSpecial    *bool                  `json:"isSpecial,omitempty"`
	Documents    map[string]interface{} `json:"documents,omitempty"`
}

// Apply merges the amendment into the application.
func (m *ApplicationAmendment) Apply(a *Application) {
	if m.LoanAmount != nil {
		a.LoanAmount = *m.LoanAmount
	}
	if m.InterestRate != nil {
		a.InterestRate = *m.InterestRate
	}
	if m.LoanTenure != nil {
		a.LoanTenure = *m.LoanTenure
	}
	if m.LoanPurpose != nil {
		a.LoanPurpose = *m.LoanPurpose
	}
	if m.Tags != nil {
		a.Tags = *m.Tags
	}
	if m.IsSpecial != nil {
		a.IsSpecial = *m.IsSpecial
	}
	if len(m.Documents) > 0 {
		if a.Documents == nil {
			a.Documents = make(map[string]interface{}, len(m.Documents))
		}
		for k, v := range m.Documents {
			a.Documents[k] = v
		}
	}
}

// IsEmpty reports whether the amendment changes nothing.
func (m *ApplicationAmendment) IsEmpty() bool {
	return m.LoanAmount == nil && m.InterestRate == nil && m.LoanTenure == nil &&
		m.LoanPurpose == nil && m.Tags == nil && m.IsSpecial == nil && len(m.Documents) == 0
}
