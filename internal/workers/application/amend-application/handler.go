// internal/workers/application/amend-application/handler.go
package amendapplication

import (
	"context"
	"encoding/json"
	"fmt"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/models"
	"lending-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "amend-application"
)

type ApplicationMerger interface {
	Merge(ctx context.Context, id string, amendment *models.ApplicationAmendment) (*models.Application, error)
}

type Indexer interface {
	Put(ctx context.Context, app *models.Application) error
}

type Handler struct {
	config       *Config
	applications ApplicationMerger
	index        Indexer
	runner       *camunda.JobRunner
	logger       logger.Logger
}

func NewHandler(config *Config, applications ApplicationMerger, index Indexer, log logger.Logger, obs *observability.Observability) *Handler {
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
	if input.ApplicationID == "" {
		return nil, apperrors.NewInputValidationFailedError("applicationId is required")
	}
	if input.Amendment.IsEmpty() {
		return nil, apperrors.NewInputValidationFailedError("amendment changes nothing")
	}
	if err := checkAmendment(&input.Amendment); err != nil {
		return nil, err
	}

	id := input.ApplicationID.String()
	app, err := h.applications.Merge(ctx, id, &input.Amendment)
	if err != nil {
		return nil, store.ToStandardError(err, id)
	}

	reindexed := false
	if h.index != nil {
		if err := h.index.Put(ctx, app); err != nil {
			h.logger.Warn("application amended but not reindexed", map[string]interface{}{
				"applicationId": id,
				"error":         err,
			})
		} else {
			reindexed = true
		}
	}

	h.logger.Info("application amended", map[string]interface{}{
		"applicationId": id,
		"reindexed":     reindexed,
	})

	return &Output{
		ApplicationID: id,
		FundingStatus: app.FundingStatus,
		Tags:          app.Tags.Names(),
		UpdatedAt:     app.UpdatedAt,
		Reindexed:     reindexed,
	}, nil
}

// checkAmendment rejects values an intake form would also reject.
func checkAmendment(m *models.ApplicationAmendment) error {
	positive := []struct {
		field string
		value *models.Number
	}{
		{"loanAmount", m.LoanAmount},
		{"interestRate", m.InterestRate},
		{"loanTenure", m.LoanTenure},
	}
	for _, p := range positive {
		if p.value != nil && *p.value <= 0 {
			return apperrors.NewApplicationValidationFailedError(fmt.Sprintf("%s must be greater than 0", p.field))
		}
	}
	if m.Tags != nil {
		for i, tag := range *m.Tags {
			if !tag.Valid() {
				return apperrors.NewApplicationValidationFailedError(fmt.Sprintf("tags[%d] is malformed: %s", i, tag.Raw()))
			}
		}
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
