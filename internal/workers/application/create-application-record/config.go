// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import (
	"time"

	"lending-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// RejectWarnings turns validation warnings into a rejection.
	RejectWarnings bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second}
	if cfg != nil {
		c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	}
	return c
}
