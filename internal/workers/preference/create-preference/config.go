// internal/workers/preference/create-preference/config.go
package createpreference

import (
	"time"

	"lending-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// RejectUnknownSectors fails the job instead of warning when a
	// preference names a sector the intake form does not offer.
	RejectUnknownSectors bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 10 * time.Second}
	if cfg != nil {
		c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	}
	return c
}
