// internal/workers/bidding/finalize-bid/handler.go
package finalizebid

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"lending-workers/internal/common/aws"
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
	TaskType = "finalize-bid"
)

// BidFinalizer finalizes a pending bid together with its application.
type BidFinalizer interface {
	Finalize(ctx context.Context, id string) (*models.Bid, *models.Application, error)
}

// EventPublisher announces finalized bids to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) (string, error)
}

type Handler struct {
	config *Config
	bids   BidFinalizer
	events EventPublisher
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(config *Config, bids BidFinalizer, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		bids:   bids,
		runner: camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger: log,
	}
}

// WithEvents enables best-effort publishing of bid.finalized events.
func (h *Handler) WithEvents(p EventPublisher) *Handler {
	h.events = p
	return h
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
	id := strings.TrimSpace(input.BidID)
	if id == "" {
		return nil, apperrors.NewInputValidationFailedError("bidId is required")
	}

	bid, app, err := h.bids.Finalize(ctx, id)
	if err != nil {
		// A bid pointing at a deleted application.
		if errors.Is(err, store.ErrApplicationNotFound) {
			return nil, apperrors.NewApplicationNotFoundError("unknown").WithMetadata("bidId", id)
		}
		return nil, store.ToStandardError(err, id)
	}

	h.logger.Info("bid finalized", map[string]interface{}{
		"bidId":         bid.ID,
		"applicationId": app.ID.String(),
	})
	h.publish(ctx, bid)

	return &Output{
		BidID:         bid.ID,
		Status:        bid.Status,
		LoanAmount:    bid.LoanAmount,
		ApplicationID: app.ID.String(),
		FundingStatus: app.FundingStatus,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// publish failures are logged only; the bid is already committed.
func (h *Handler) publish(ctx context.Context, bid *models.Bid) {
	if h.events == nil {
		return
	}
	_, err := h.events.Publish(ctx, aws.EventBidFinalized, map[string]interface{}{
		"bidId":         bid.ID,
		"userId":        bid.UserID,
		"applicationId": bid.ApplicationID.String(),
		"loanAmount":    bid.LoanAmount.String(),
	})
	if err != nil {
		h.logger.Warn("bid event not published", map[string]interface{}{"bidId": bid.ID, "error": err})
	}
}
