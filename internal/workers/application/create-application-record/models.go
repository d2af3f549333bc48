// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "lending-workers/internal/models"

type Input struct {
	Application models.Application `json:"application"`
}

type Output struct {
	ApplicationID     string   `json:"applicationId"`
	ApplicationStatus string   `json:"applicationStatus"`
	CreatedAt         string   `json:"createdAt"` // RFC 3339
	Indexed           bool     `json:"indexed"`
	Warnings          []string `json:"warnings,omitempty"`
}
