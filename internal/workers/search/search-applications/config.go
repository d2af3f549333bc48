// internal/workers/search/search-applications/config.go
package searchapplications

import (
	"time"

	"lending-workers/internal/common/config"
	"lending-workers/internal/search"
)

type Config struct {
	IndexName   string
	DefaultSize int
	MaxSize     int
	Timeout     time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		IndexName:   "applications",
		DefaultSize: search.DefaultSize,
		MaxSize:     search.MaxSize,
		Timeout:     10 * time.Second,
	}
	if cfg == nil {
		return c
	}
	c.IndexName = cfg.Search.ApplicationIndex
	c.DefaultSize = cfg.Search.DefaultSize
	c.MaxSize = cfg.Search.MaxSize
	c.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	return c
}
