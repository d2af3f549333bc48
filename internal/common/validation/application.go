// internal/common/validation/application.go
package validation

import (
	"fmt"
	"strings"

	"lending-workers/internal/models"
	"lending-workers/internal/ranking"
)

var numeric = map[string]interface{}{"type": []interface{}{"number", "string", "null"}}

// ApplicationSchema is the structural shape of an intake form document.
// Numeric fields may arrive as strings from form posts.
var ApplicationSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"companyName", "loanAmount"},
	"properties": map[string]interface{}{
		"id":               map[string]interface{}{"type": []interface{}{"string", "number"}},
		"userId":           map[string]interface{}{"type": "string"},
		"companyName":      map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
		"contactPerson":    map[string]interface{}{"type": "string"},
		"phone":            map[string]interface{}{"type": "string"},
		"businessType":     map[string]interface{}{"type": "string"},
		"loanPurpose":      map[string]interface{}{"type": "string"},
		"yearsInOperation": numeric,
		"annualRevenue":    numeric,
		"loanAmount":       numeric,
		"interestRate":     numeric,
		"loanTenure":       numeric,
		"tags":             map[string]interface{}{"type": "array"},
		"isSpecial":        map[string]interface{}{"type": "boolean"},
		"documents":        map[string]interface{}{"type": "object"},
	},
}

var knownSectors = func() map[string]bool {
	m := make(map[string]bool, len(models.KnownSectors))
	for _, s := range models.KnownSectors {
		m[s] = true
	}
	return m
}()

// ValidateApplication applies the intake business rules. Values outside
// the scoring ranges and unknown sectors are warnings; the ranker still
// accepts them.
func ValidateApplication(app *models.Application) *ValidationResult {
	vr := &ValidationResult{Valid: true}

	if strings.TrimSpace(app.CompanyName) == "" {
		vr.addError("companyName", "REQUIRED_FIELD_MISSING", "company name is required")
	}
	if strings.TrimSpace(app.ContactPerson) == "" {
		vr.addError("contactPerson", "REQUIRED_FIELD_MISSING", "contact person is required")
	}
	switch {
	case strings.TrimSpace(app.Phone) == "":
		vr.addError("phone", "REQUIRED_FIELD_MISSING", "phone is required")
	case !ValidatePhone(app.Phone):
		vr.addError("phone", "INVALID_PHONE", "phone must contain at least 10 digits")
	}

	if app.YearsInOperation < 0 {
		vr.addError("yearsInOperation", "NEGATIVE_VALUE", "years in operation cannot be negative")
	}
	if app.AnnualRevenue < 0 {
		vr.addError("annualRevenue", "NEGATIVE_VALUE", "annual revenue cannot be negative")
	}

	validateRange(vr, "loanAmount", app.LoanAmount.Float64(), ranking.MinLoanAmount, ranking.MaxLoanAmount, "INVALID_LOAN_AMOUNT")
	if rate := app.InterestRate.Float64(); rate > 100 {
		vr.addError("interestRate", "INVALID_INTEREST_RATE", "interest rate must not exceed 100%")
	} else {
		validateRange(vr, "interestRate", rate, ranking.MinInterestRate, ranking.MaxInterestRate, "INVALID_INTEREST_RATE")
	}
	validateRange(vr, "loanTenure", app.LoanTenure.Float64(), ranking.MinTenureMonths, ranking.MaxTenureMonths, "INVALID_TENURE")

	validateTags(vr, app.Tags)
	return vr
}

// validateRange rejects non-positive values and warns when a value falls
// outside the normalisation range.
func validateRange(vr *ValidationResult, field string, value, lo, hi float64, code string) {
	if value <= 0 {
		vr.addError(field, code, fmt.Sprintf("%s must be greater than 0", field))
		return
	}
	if value < lo || value > hi {
		vr.addWarning(field, "OUT_OF_SCORING_RANGE",
			fmt.Sprintf("%s %g is outside the scoring range [%g, %g]", field, value, lo, hi))
	}
}

func validateTags(vr *ValidationResult, tags models.TagList) {
	if len(tags) == 0 {
		vr.addWarning("tags", "NO_TAGS", "application has no sector tags and will not match any preference")
		return
	}

	seen := make(map[string]bool, len(tags))
	for i, tag := range tags {
		field := fmt.Sprintf("tags[%d]", i)
		if !tag.Valid() {
			vr.addError(field, "MALFORMED_TAG", fmt.Sprintf("tag %s is neither a string nor {tag, isSpecial}", tag.Raw()))
			continue
		}
		if seen[tag.Name()] {
			vr.addWarning(field, "DUPLICATE_TAG", fmt.Sprintf("tag %q appears more than once", tag.Name()))
		}
		seen[tag.Name()] = true
		if !knownSectors[tag.Name()] {
			vr.addWarning(field, "UNKNOWN_SECTOR", fmt.Sprintf("tag %q is not a known sector", tag.Name()))
		}
	}
}
