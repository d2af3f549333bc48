// internal/workers/bidding/record-funding/handler.go
package recordfunding

import (
	"context"
	"encoding/json"
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
	"github.com/shopspring/decimal"
)

const (
	TaskType = "record-funding"
)

type BidFunder interface {
	RecordFunding(ctx context.Context, id string, amount decimal.Decimal, allowExcess bool) (*models.FundingResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) (string, error)
}

type Handler struct {
	config *Config
	bids   BidFunder
	events EventPublisher
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(config *Config, bids BidFunder, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		bids:   bids,
		runner: camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger: log,
	}
}

// WithEvents enables best-effort publishing of bid.funded and
// bid.completed events.
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
	if !input.Amount.IsPositive() {
		return nil, apperrors.NewBidValidationFailedError("amount must be greater than 0")
	}

	res, err := h.bids.RecordFunding(ctx, id, input.Amount, h.config.AllowOverFunding)
	if err != nil {
		return nil, store.ToStandardError(err, id)
	}

	if res.OverFunded {
		h.logger.Warn("bid over-funded", map[string]interface{}{
			"bidId":  id,
			"excess": res.Excess.String(),
		})
	}
	h.logger.Info("funding recorded", map[string]interface{}{
		"bidId":                id,
		"amount":               input.Amount.String(),
		"completed":            res.Completed,
		"applicationRemaining": res.ApplicationRemaining.String(),
	})

	h.publish(ctx, input.Amount, res)

	return &Output{
		BidID:                res.Bid.ID,
		Status:               res.Bid.Status,
		FundingReceived:      res.Bid.FundingReceived,
		Outstanding:          res.Bid.Outstanding(),
		Completed:            res.Completed,
		OverFunded:           res.OverFunded,
		Excess:               res.Excess,
		ApplicationID:        res.ApplicationID.String(),
		ApplicationRemaining: res.ApplicationRemaining,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) publish(ctx context.Context, amount decimal.Decimal, res *models.FundingResult) {
	if h.events == nil {
		return
	}
	data := map[string]interface{}{
		"bidId":                res.Bid.ID,
		"applicationId":        res.ApplicationID.String(),
		"amount":               amount.String(),
		"fundingReceived":      res.Bid.FundingReceived.String(),
		"applicationRemaining": res.ApplicationRemaining.String(),
	}
	events := []string{aws.EventBidFunded}
	if res.Completed {
		events = append(events, aws.EventBidCompleted)
	}
	for _, ev := range events {
		if _, err := h.events.Publish(ctx, ev, data); err != nil {
			h.logger.Warn("bid event not published", map[string]interface{}{
				"bidId": res.Bid.ID, "event": ev, "error": err,
			})
		}
	}
}
