// internal/workers/matching/calculate-match-score/config.go
package calculatematchscore

import (
	"time"

	"lending-workers/internal/common/config"
	"lending-workers/internal/ranking"
)

type Config struct {
	Ranking ranking.RankingConfig
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return &Config{Ranking: ranking.DefaultRankingConfig(), Timeout: 10 * time.Second}
	}
	return &Config{
		Ranking: cfg.Ranking.ToRankingConfig(),
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
