// internal/workers/matching/rank-applications/handler.go
package rankapplications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lending-workers/internal/common/camunda"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/models"
	"lending-workers/internal/ranking"
	"lending-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "rank-applications"
)

type PreferenceSource interface {
	Get(ctx context.Context, id string) (*models.InvestorPreference, error)
}

type ApplicationSource interface {
	ListOpen(ctx context.Context) ([]models.Application, error)
	ListOpenByIDs(ctx context.Context, ids []string) ([]models.Application, error)
}

// CandidateIndex narrows the candidate set to applications sharing at least
// one tag with the preference.
type CandidateIndex interface {
	OpenApplicationsByTags(ctx context.Context, tags []string, limit int) ([]string, error)
}

type Handler struct {
	config       *Config
	ranker       *ranking.Ranker
	preferences  PreferenceSource
	applications ApplicationSource
	index        CandidateIndex
	obs          *observability.Observability
	runner       *camunda.JobRunner
	logger       logger.Logger
}

// NewHandler fails when the configured ranking weights are unusable. index
// may be nil.
func NewHandler(config *Config, preferences PreferenceSource, applications ApplicationSource, index CandidateIndex, log logger.Logger, obs *observability.Observability) (*Handler, error) {
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
		index:        index,
		obs:          obs,
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
	pref, err := h.resolvePreference(ctx, input)
	if err != nil {
		return nil, err
	}

	ranker := h.ranker
	if input.Weights != nil {
		ranker, err = ranking.NewRanker(h.ranker.Config().WithWeights(*input.Weights), h.logger)
		if err != nil {
			return nil, apperrors.NewInvalidWeightConfigurationError(err)
		}
	}

	if len(pref.PreferenceSet()) == 0 {
		return nil, apperrors.NewEmptyPreferenceSetError(
			fmt.Errorf("%w: preference %q has no sectors", ranking.ErrEmptyPreferenceSet, pref.ID))
	}

	candidates, err := h.candidates(ctx, input, pref)
	if err != nil {
		return nil, err
	}

	_, span := observability.StartSpan(ctx, "ranking.rank",
		attribute.Int("candidates", len(candidates)),
		attribute.String("preference.id", pref.ID.String()),
	)
	result, err := ranker.RankDetailed(candidates, *pref)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, mapRankingError(err)
	}

	metrics.RankingCandidates.Observe(float64(result.Candidates))
	metrics.RankingMalformedTags.Add(float64(result.MalformedTags))

	entries := result.Entries
	if limit := h.maxResults(input); limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	output := &Output{
		PreferenceID:       pref.ID.String(),
		RankedApplications: entries,
		TotalCandidates:    result.Candidates,
		Returned:           len(entries),
		MalformedTags:      result.MalformedTags,
	}
	if len(entries) > 0 {
		output.TopScore = entries[0].CombinedScore
		h.obs.RecordRankingScore(ctx, output.TopScore)
	}

	h.logger.Info("applications ranked", map[string]interface{}{
		"preferenceId":  output.PreferenceID,
		"candidates":    output.TotalCandidates,
		"returned":      output.Returned,
		"malformedTags": output.MalformedTags,
		"topScore":      output.TopScore,
	})

	return output, nil
}

func (h *Handler) resolvePreference(ctx context.Context, input *Input) (*models.InvestorPreference, error) {
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

	id := input.PreferenceID.String()
	pref, err := h.preferences.Get(ctx, id)
	if err != nil {
		return nil, store.ToStandardError(err, id)
	}
	return pref, nil
}

func (h *Handler) candidates(ctx context.Context, input *Input, pref *models.InvestorPreference) ([]models.Application, error) {
	if input.Applications != nil {
		return input.Applications, nil
	}

	useIndex := h.config.UseSearchIndex
	if input.UseSearchIndex != nil {
		useIndex = *input.UseSearchIndex
	}

	if useIndex && h.index != nil {
		ids, err := h.index.OpenApplicationsByTags(ctx, pref.Preferences, h.config.CandidateLimit)
		if err == nil {
			apps, err := h.applications.ListOpenByIDs(ctx, ids)
			if err != nil {
				return nil, store.ToStandardError(err, "")
			}
			return apps, nil
		}
		// The index only narrows the set; Postgres stays authoritative.
		h.logger.Warn("candidate pre-filter failed, loading all open applications", map[string]interface{}{
			"error": err,
		})
	}

	apps, err := h.applications.ListOpen(ctx)
	if err != nil {
		return nil, store.ToStandardError(err, "")
	}
	return apps, nil
}

func (h *Handler) maxResults(input *Input) int {
	if input.MaxResults > 0 {
		return input.MaxResults
	}
	return h.config.MaxResults
}

func mapRankingError(err error) error {
	switch {
	case errors.Is(err, ranking.ErrEmptyPreferenceSet):
		return apperrors.NewEmptyPreferenceSetError(err)
	case errors.Is(err, ranking.ErrInvalidWeightConfiguration):
		return apperrors.NewInvalidWeightConfigurationError(err)
	}
	return apperrors.NewInternalError(err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
