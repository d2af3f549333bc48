// internal/workers/application/validate-application-data/config.go
package validateapplicationdata

import (
	"time"

	"lending-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 10 * time.Second}
	if cfg != nil {
		c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	}
	return c
}
