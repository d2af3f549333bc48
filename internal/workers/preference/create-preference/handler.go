// internal/workers/preference/create-preference/handler.go
package createpreference

import (
	"context"
	"encoding/json"
	"fmt"
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
	TaskType = "create-preference"
)

type PreferenceCreator interface {
	Create(ctx context.Context, pref *models.InvestorPreference) (*models.InvestorPreference, error)
}

var knownSectors = func() map[string]bool {
	m := make(map[string]bool, len(models.KnownSectors))
	for _, s := range models.KnownSectors {
		m[s] = true
	}
	return m
}()

type Handler struct {
	config      *Config
	preferences PreferenceCreator
	runner      *camunda.JobRunner
	logger      logger.Logger
}

func NewHandler(config *Config, preferences PreferenceCreator, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		preferences: preferences,
		runner:      camunda.NewJobRunner(TaskType, config.Timeout, log, obs),
		logger:      log,
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
	pref := input.Preference
	pref.Preferences = dedupe(pref.Preferences)
	if len(pref.Preferences) == 0 {
		return nil, apperrors.NewInputValidationFailedError("at least one preferred sector is required")
	}
	if pref.AmountToInvest < 0 {
		return nil, apperrors.NewInputValidationFailedError("amountToInvest cannot be negative")
	}

	var unknown []string
	for _, p := range pref.Preferences {
		if !knownSectors[p] {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		if h.config.RejectUnknownSectors {
			return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("unknown sectors: %s", strings.Join(unknown, ", ")))
		}
		h.logger.Warn("preference names unknown sectors", map[string]interface{}{
			"userId":  pref.UserID,
			"sectors": unknown,
		})
	}

	created, err := h.preferences.Create(ctx, &pref)
	if err != nil {
		if stdErr := store.ToStandardError(err, pref.ID.String()); stdErr.Code == apperrors.ErrCodeQueryTimeout {
			return nil, stdErr
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("investor preference stored", map[string]interface{}{
		"preferenceId": created.ID.String(),
		"userId":       created.UserID,
		"sectors":      len(created.Preferences),
	})

	return &Output{
		PreferenceID:   created.ID.String(),
		Preferences:    created.Preferences,
		UnknownSectors: unknown,
		CreatedAt:      created.CreatedAt,
	}, nil
}

// dedupe trims entries and drops blanks and repeats, keeping first
// occurrence order.
func dedupe(prefs []string) []string {
	seen := make(map[string]bool, len(prefs))
	out := make([]string, 0, len(prefs))
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
