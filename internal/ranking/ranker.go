// internal/ranking/ranker.go
package ranking

import (
	"fmt"
	"sort"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

// RankedEntry is one application's position in a ranking.
type RankedEntry struct {
	ApplicationID  models.ID `json:"applicationId"`
	Rank           int       `json:"rank"`
	CombinedScore  float64   `json:"combinedScore"`
	FinancialScore float64   `json:"financialScore"`
	TagScore       float64   `json:"tagScore"`
	MatchedTags    []string  `json:"matchedTags"`
}

// Ranking is a ranked result plus counters about the inputs.
type Ranking struct {
	Entries       []RankedEntry
	Candidates    int
	MalformedTags int
}

// Ranker scores applications against an investor preference. It holds no
// mutable state and is safe for concurrent use.
type Ranker struct {
	config RankingConfig
	logger logger.Logger
}

func NewRanker(config RankingConfig, log logger.Logger) (*Ranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Ranker{config: config, logger: log}, nil
}

func (r *Ranker) Config() RankingConfig {
	return r.config
}

// Rank orders applications by combined score, highest first. Ties keep
// their input order.
func (r *Ranker) Rank(applications []models.Application, preference models.InvestorPreference) ([]RankedEntry, error) {
	res, err := r.RankDetailed(applications, preference)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// RankDetailed is Rank with input counters attached.
func (r *Ranker) RankDetailed(applications []models.Application, preference models.InvestorPreference) (*Ranking, error) {
	return rank(r.config, r.logger, applications, preference)
}

// Score computes the scores of a single application without ranking.
func (r *Ranker) Score(app *models.Application, preference models.InvestorPreference) (RankedEntry, error) {
	prefs := preference.PreferenceSet()
	if len(prefs) == 0 {
		return RankedEntry{}, fmt.Errorf("%w: preference %q has no sectors", ErrEmptyPreferenceSet, preference.ID)
	}
	entry, _ := r.score(r.config, app, prefs)
	entry.Rank = 1
	return entry, nil
}

func (r *Ranker) score(cfg RankingConfig, app *models.Application, prefs map[string]struct{}) (RankedEntry, int) {
	fin := financialScore(cfg.LoanTermsOf(app), cfg.Weights)
	match := matchTags(app.Tags, prefs)
	if match.Malformed > 0 {
		r.logger.Warn("skipping malformed tags", map[string]interface{}{
			"applicationId": app.ID.String(),
			"count":         match.Malformed,
		})
	}
	return RankedEntry{
		ApplicationID:  app.ID,
		CombinedScore:  match.Score*cfg.TagBlend + fin*cfg.FinancialBlend,
		FinancialScore: fin,
		TagScore:       match.Score,
		MatchedTags:    match.Matched,
	}, match.Malformed
}

// Rank ranks applications with the default configuration. A nil weights
// argument keeps the default financial weights.
func Rank(applications []models.Application, preference models.InvestorPreference, weights *FinancialWeights) ([]RankedEntry, error) {
	cfg := DefaultRankingConfig()
	if weights != nil {
		cfg = cfg.WithWeights(*weights)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := rank(cfg, logger.NewNoOpLogger(), applications, preference)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

func rank(cfg RankingConfig, log logger.Logger, applications []models.Application, preference models.InvestorPreference) (*Ranking, error) {
	prefs := preference.PreferenceSet()
	if len(prefs) == 0 {
		return nil, fmt.Errorf("%w: preference %q has no sectors", ErrEmptyPreferenceSet, preference.ID)
	}

	r := &Ranker{config: cfg, logger: log}
	scored := make([]RankedEntry, len(applications))
	malformed := 0
	for i := range applications {
		entry, skipped := r.score(cfg, &applications[i], prefs)
		scored[i] = entry
		malformed += skipped
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scored[order[a]].CombinedScore > scored[order[b]].CombinedScore
	})

	entries := make([]RankedEntry, len(order))
	for pos, idx := range order {
		entries[pos] = scored[idx]
		entries[pos].Rank = pos + 1
	}

	return &Ranking{
		Entries:       entries,
		Candidates:    len(applications),
		MalformedTags: malformed,
	}, nil
}
