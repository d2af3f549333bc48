// internal/workers/bidding/finalize-bid/config.go
package finalizebid

import (
	"time"

	"lending-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 15 * time.Second}
	if cfg != nil {
		c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	}
	return c
}
