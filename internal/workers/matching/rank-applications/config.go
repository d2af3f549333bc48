// internal/workers/matching/rank-applications/config.go
package rankapplications

import (
	"time"

	"lending-workers/internal/common/config"
	"lending-workers/internal/ranking"
)

type Config struct {
	Ranking        ranking.RankingConfig
	MaxResults int
	// UseSearchIndex narrows candidates to open applications sharing at
	// least one preferred tag. Applications with no matching tag would
	// otherwise still rank on their financial score alone, so the result is
	// a truncated ranking rather than every open application.
	UseSearchIndex bool
	CandidateLimit int
	Timeout        time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Ranking:        ranking.DefaultRankingConfig(),
		MaxResults:     50,
		CandidateLimit: 1000,
		Timeout:        30 * time.Second,
	}
	if cfg == nil {
		return c
	}
	c.Ranking = cfg.Ranking.ToRankingConfig()
	c.MaxResults = cfg.Ranking.MaxResults
	c.UseSearchIndex = cfg.Ranking.UseSearchIndex
	c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	return c
}
