// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/common/validation"
	"lending-workers/internal/models"
	"lending-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-application-record"
)

type ApplicationCreator interface {
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
}

type Indexer interface {
	Put(ctx context.Context, app *models.Application) error
}

type Handler struct {
	config       *Config
	applications ApplicationCreator
	index        Indexer
	runner       *camunda.JobRunner
	logger       logger.Logger
}

// NewHandler builds the handler. index may be nil, in which case new
// applications are only stored.
func NewHandler(config *Config, applications ApplicationCreator, index Indexer, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		applications: applications,
		index:        index,
		runner:       camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger:       log,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	app := input.Application

	result := validation.ValidateApplication(&app)
	if !result.Valid {
		return nil, apperrors.NewApplicationValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}
	warnings := messages(result.Warnings)
	if h.config.RejectWarnings && len(warnings) > 0 {
		return nil, apperrors.NewApplicationValidationFailedError(strings.Join(warnings, "; "))
	}

	// Funding always starts from zero; intake cannot pre-finalize.
	app.FundingReceived = 0
	app.FundingStatus = models.FundingStatusPending

	created, err := h.applications.Create(ctx, &app)
	if err != nil {
		return nil, insertError(err, app.ID.String())
	}

	indexed := false
	if h.index != nil {
		if err := h.index.Put(ctx, created); err != nil {
			h.logger.Warn("application stored but not indexed", map[string]interface{}{
				"applicationId": created.ID.String(),
				"error":         err,
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": created.ID.String(),
		"userId":        created.UserID,
		"tags":          created.Tags.Names(),
		"indexed":       indexed,
	})

	return &Output{
		ApplicationID:     created.ID.String(),
		ApplicationStatus: created.FundingStatus,
		CreatedAt:         created.CreatedAt,
		Indexed:           indexed,
		Warnings:          warnings,
	}, nil
}

func insertError(err error, id string) error {
	switch {
	case errors.Is(err, store.ErrDuplicateApplication):
		return apperrors.NewDuplicateApplicationError(id)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError("insert_application")
	}
	return apperrors.NewDatabaseInsertFailedError(err)
}

func messages(issues []validation.ValidationError) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
