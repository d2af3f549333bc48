// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"encoding/json"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/common/validation"
	"lending-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-application-data"
)

type Handler struct {
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		runner: camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, variables string) (interface{}, error) {
		var input Input
		if err := json.Unmarshal([]byte(variables), &input); err != nil {
			return nil, apperrors.NewParseError(err)
		}
		return h.execute(ctx, &input)
	})
}

// execute reports problems in the output rather than failing the job, so
// the process can route invalid intakes back to the applicant.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	output := &Output{
		ValidationErrors:   []validation.ValidationError{},
		ValidationWarnings: []validation.ValidationError{},
	}

	var doc interface{} = input.ApplicationData
	if input.ApplicationData == nil {
		doc = map[string]interface{}{}
	}
	structural, err := validation.ValidateDocument(validation.ApplicationSchema, doc)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !structural.Valid {
		output.ValidationErrors = append(output.ValidationErrors, structural.Errors...)
		h.logResult(output)
		return output, nil
	}

	raw, err := json.Marshal(input.ApplicationData)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	var app models.Application
	if err := json.Unmarshal(raw, &app); err != nil {
		output.ValidationErrors = append(output.ValidationErrors, validation.ValidationError{
			Field:   "applicationData",
			Code:    "INVALID_FORMAT",
			Message: err.Error(),
		})
		h.logResult(output)
		return output, nil
	}

	business := validation.ValidateApplication(&app)
	output.ValidationErrors = append(output.ValidationErrors, business.Errors...)
	output.ValidationWarnings = append(output.ValidationWarnings, business.Warnings...)
	output.IsValid = business.Valid
	if output.IsValid {
		output.ValidatedData = &app
	}

	h.logResult(output)
	return output, nil
}

func (h *Handler) logResult(output *Output) {
	h.logger.Info("application validated", map[string]interface{}{
		"isValid":  output.IsValid,
		"errors":   len(output.ValidationErrors),
		"warnings": len(output.ValidationWarnings),
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
