// internal/workers/search/search-applications/handler.go
package searchapplications

import (
	"context"
	"encoding/json"
	"errors"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-applications"
)

type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type Handler struct {
	config *Config
	index  Searcher
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(config *Config, index Searcher, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		index:  index,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	q, err := input.Query.Normalize(h.config.DefaultSize, h.config.MaxSize)
	if err != nil {
		return nil, apperrors.NewInvalidFilterFormatError(err.Error())
	}

	result, err := h.index.Search(ctx, q)
	if err != nil {
		return nil, h.mapSearchError(ctx, err)
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"total":    result.Total,
		"returned": len(result.Hits),
		"tookMs":   result.Took,
	})

	hits := result.Hits
	if hits == nil {
		hits = []search.Hit{}
	}
	return &Output{
		Applications: hits,
		Total:        result.Total,
		Returned:     len(hits),
		From:         q.From,
		Size:         q.Size,
		MaxScore:     result.MaxScore,
		Took:         result.Took,
	}, nil
}

func (h *Handler) mapSearchError(ctx context.Context, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, search.ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(h.config.IndexName)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(TaskType)
	case errors.Is(err, search.ErrInvalidQuery):
		return apperrors.NewInvalidFilterFormatError(err.Error())
	default:
		return apperrors.NewSearchQueryFailedError(TaskType, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
