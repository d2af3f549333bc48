// internal/workers/bidding/record-funding/config.go
package recordfunding

import (
	"time"

	"lending-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// AllowOverFunding accepts payments that push a bid past its loan
	// amount and reports the excess. When false such payments fail.
	AllowOverFunding bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 15 * time.Second, AllowOverFunding: true}
	if cfg != nil {
		c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	}
	return c
}
