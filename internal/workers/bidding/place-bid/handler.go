// internal/workers/bidding/place-bid/handler.go
package placebid

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

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
	TaskType = "place-bid"
)

type ApplicationSource interface {
	Get(ctx context.Context, id string) (*models.Application, error)
}

type BidCreator interface {
	Create(ctx context.Context, bid *models.Bid) (*models.Bid, error)
}

type Handler struct {
	config       *Config
	applications ApplicationSource
	bids         BidCreator
	runner       *camunda.JobRunner
	logger       logger.Logger
}

func NewHandler(config *Config, applications ApplicationSource, bids BidCreator, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		applications: applications,
		bids:         bids,
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
	if problems := validate(input); len(problems) > 0 {
		return nil, apperrors.NewBidValidationFailedError(strings.Join(problems, "; "))
	}

	appID := input.ApplicationID.String()
	app, err := h.applications.Get(ctx, appID)
	if err != nil {
		return nil, store.ToStandardError(err, appID)
	}
	if app.IsFinalized() {
		return nil, apperrors.NewApplicationFinalizedError(appID)
	}

	bid, err := h.bids.Create(ctx, &models.Bid{
		UserID:            input.UserID,
		ApplicationID:     input.ApplicationID,
		LoanAmount:        input.LoanAmount,
		InterestRate:      input.InterestRate,
		Tenure:            input.Tenure,
		AdditionalDetails: input.AdditionalDetails,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewQueryTimeoutError("insert_bid")
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("bid placed", map[string]interface{}{
		"bidId":         bid.ID,
		"applicationId": appID,
		"userId":        bid.UserID,
		"loanAmount":    bid.LoanAmount.String(),
	})

	return &Output{
		BidID:         bid.ID,
		ApplicationID: appID,
		Status:        bid.Status,
		LoanAmount:    bid.LoanAmount,
		CreatedAt:     bid.CreatedAt,
	}, nil
}

func validate(input *Input) []string {
	var problems []string
	if strings.TrimSpace(input.UserID) == "" {
		problems = append(problems, "userId is required")
	}
	if input.ApplicationID == "" {
		problems = append(problems, "applicationId is required")
	}
	if !input.LoanAmount.IsPositive() {
		problems = append(problems, "loanAmount must be greater than 0")
	}
	if input.InterestRate < 0 || input.InterestRate > 100 {
		problems = append(problems, "interestRate must be between 0 and 100")
	}
	if input.Tenure < 0 {
		problems = append(problems, "tenure cannot be negative")
	}
	return problems
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
