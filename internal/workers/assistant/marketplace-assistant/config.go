// internal/workers/assistant/marketplace-assistant/config.go
package marketplaceassistant

import (
	"time"

	"lending-workers/internal/common/config"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// MaxHistory caps how many earlier turns are sent with a question.
	MaxHistory int
	// RequestsPerSecond of 0 disables throttling.
	RequestsPerSecond float64
	Burst             int
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		BaseURL:    "https://generativelanguage.googleapis.com",
		Model:      "gemini-pro",
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		MaxHistory: 10,
	}
	if cfg == nil {
		return c
	}
	if cfg.Assistant.BaseURL != "" {
		c.BaseURL = cfg.Assistant.BaseURL
	}
	if cfg.Assistant.Model != "" {
		c.Model = cfg.Assistant.Model
	}
	c.APIKey = cfg.Assistant.APIKey
	c.MaxRetries = cfg.Assistant.MaxRetries
	c.RequestsPerSecond = cfg.Assistant.RequestsPerSecond
	c.Burst = cfg.Assistant.Burst
	c.Timeout = config.GetDuration(cfg.Assistant.Timeout)
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 && config.GetDuration(wc.Timeout) < c.Timeout {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	return c
}
