// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"lending-workers/internal/common/validation"
	"lending-workers/internal/models"
)

type Input struct {
	ApplicationData map[string]interface{} `json:"applicationData"`
}

type Output struct {
	IsValid            bool                         `json:"isValid"`
	ValidatedData      *models.Application          `json:"validatedData,omitempty"`
	ValidationErrors   []validation.ValidationError `json:"validationErrors"`
	ValidationWarnings []validation.ValidationError `json:"validationWarnings"`
}
