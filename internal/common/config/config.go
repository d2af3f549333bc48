// internal/common/config/config.go
package config

import (
	"fmt"

	"lending-workers/internal/ranking"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Ranking       RankingSettings         `mapstructure:"ranking"`
	Search        SearchConfig            `mapstructure:"search"`
	Assistant     AssistantConfig         `mapstructure:"assistant"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Events        EventsConfig            `mapstructure:"events"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HealthPort  int    `mapstructure:"health_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Sections ---

// RankingSettings configures the investor-preference ranker.
type RankingSettings struct {
	Weights        ranking.FinancialWeights `mapstructure:"weights"`
	TagBlend       float64                  `mapstructure:"tag_blend"`
	FinancialBlend float64                  `mapstructure:"financial_blend"`
	LoanDefaults   ranking.LoanDefaults     `mapstructure:"loan_defaults"`
	MaxResults     int                      `mapstructure:"max_results"`
	UseSearchIndex bool                     `mapstructure:"use_search_index"`
}

// ToRankingConfig converts the settings into the ranker's value object.
func (r RankingSettings) ToRankingConfig() ranking.RankingConfig {
	return ranking.RankingConfig{
		Weights:        r.Weights,
		TagBlend:       r.TagBlend,
		FinancialBlend: r.FinancialBlend,
		Defaults:       r.LoanDefaults,
	}
}

type SearchConfig struct {
	ApplicationIndex string `mapstructure:"application_index"`
	DefaultSize      int    `mapstructure:"default_size"`
	MaxSize          int    `mapstructure:"max_size"`
	// ReindexSchedule is a cron spec ("@every 15m", "0 */6 * * *"). Empty
	// disables the periodic rebuild.
	ReindexSchedule string `mapstructure:"reindex_schedule"`
}

// AssistantConfig holds settings for the marketplace-assistant worker.
type AssistantConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
	// RequestsPerSecond throttles calls to the GenAI API; 0 means unlimited.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// EventsConfig enables publishing bid lifecycle events to SNS. An empty
// topic ARN disables publishing.
type EventsConfig struct {
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

func (e EventsConfig) Enabled() bool {
	return e.TopicARN != ""
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
