// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"encoding/json"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/models"
	"lending-workers/internal/ranking"
	"lending-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-match-score"
)

type PreferenceSource interface {
	Get(ctx context.Context, id string) (*models.InvestorPreference, error)
}

type ApplicationSource interface {
	Get(ctx context.Context, id string) (*models.Application, error)
}

type Handler struct {
	config       *Config
	ranker       *ranking.Ranker
	preferences  PreferenceSource
	applications ApplicationSource
	runner       *camunda.JobRunner
	logger       logger.Logger
}

func NewHandler(config *Config, preferences PreferenceSource, applications ApplicationSource, log logger.Logger, obs *observability.Observability) (*Handler, error) {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	ranker, err := ranking.NewRanker(config.Ranking, log)
	if err != nil {
		return nil, err
	}
	return &Handler{
		config:       config,
		ranker:       ranker,
		preferences:  preferences,
		applications: applications,
		runner:       camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger:       log,
	}, nil
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
	ranker := h.ranker
	if input.Weights != nil {
		var err error
		ranker, err = ranking.NewRanker(h.ranker.Config().WithWeights(*input.Weights), h.logger)
		if err != nil {
			return nil, apperrors.NewInvalidWeightConfigurationError(err)
		}
	}

	pref, err := h.preference(ctx, input)
	if err != nil {
		return nil, err
	}
	app, err := h.application(ctx, input)
	if err != nil {
		return nil, err
	}

	entry, err := ranker.Score(app, *pref)
	if err != nil {
		return nil, apperrors.NewEmptyPreferenceSetError(err)
	}

	cfg := ranker.Config()
	output := &Output{
		ApplicationID: app.ID.String(),
		PreferenceID:  pref.ID.String(),
		MatchScore:    entry.CombinedScore,
		MatchFactors: MatchFactors{
			TagScore:       entry.TagScore,
			FinancialScore: entry.FinancialScore,
			TagBlend:       cfg.TagBlend,
			FinancialBlend: cfg.FinancialBlend,
		},
		MatchedTags: entry.MatchedTags,
	}
	if output.MatchedTags == nil {
		output.MatchedTags = []string{}
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"applicationId": output.ApplicationID,
		"preferenceId":  output.PreferenceID,
		"score":         output.MatchScore,
		"factors":       output.MatchFactors,
	})

	return output, nil
}

func (h *Handler) preference(ctx context.Context, input *Input) (*models.InvestorPreference, error) {
	if input.Preference != nil {
		pref := *input.Preference
		if pref.ID == "" {
			pref.ID = input.PreferenceID
		}
		return &pref, nil
	}
	if input.PreferenceID == "" {
		return nil, apperrors.NewInputValidationFailedError("preferenceId or preference is required")
	}
	pref, err := h.preferences.Get(ctx, input.PreferenceID.String())
	if err != nil {
		return nil, store.ToStandardError(err, input.PreferenceID.String())
	}
	return pref, nil
}

func (h *Handler) application(ctx context.Context, input *Input) (*models.Application, error) {
	if input.Application != nil {
		app := *input.Application
		if app.ID == "" {
			app.ID = input.ApplicationID
		}
		return &app, nil
	}
	if input.ApplicationID == "" {
		return nil, apperrors.NewInputValidationFailedError("applicationId or application is required")
	}
	app, err := h.applications.Get(ctx, input.ApplicationID.String())
	if err != nil {
		return nil, store.ToStandardError(err, input.ApplicationID.String())
	}
	return app, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
