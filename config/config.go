// Package config loads config.toml, exchanges.toml and directions.toml into
// nested structs via github.com/pelletier/go-toml/v2, restructured around
// the eight fixed pairdiscovery SourceIds.
package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"pairdiscovery/model"
)

// RetryConfig describes the REST retry policy (attempt count and backoff)
// applied by the inventory fetcher.
type RetryConfig struct {
	MaxAttempts       int           `toml:"max_attempts"`
	BaseDelay         time.Duration `toml:"base_delay"`
	MaxDelay          time.Duration `toml:"max_delay"`
	BackoffMultiplier float64       `toml:"backoff_multiplier"`
}

// ValidationConfig holds live-validation's timing constants.
type ValidationConfig struct {
	OverallBatchTimeout time.Duration `toml:"overall_batch_timeout"`
	CollectDuration      time.Duration `toml:"collect_duration"`
	IdleTimeout          time.Duration `toml:"idle_timeout"`
	ReadSlice            time.Duration `toml:"read_slice"`
	InterBatchPause      time.Duration `toml:"inter_batch_pause"`
	ReconnectAttempts    int           `toml:"reconnect_attempts"`
	ReconnectBaseDelay   time.Duration `toml:"reconnect_base_delay"`
	ReconnectMaxDelay    time.Duration `toml:"reconnect_max_delay"`
}

// MonitoringConfig gates the optional CloudWatch/Prometheus ambient
// metrics integrations.
type MonitoringConfig struct {
	PrometheusEnabled bool   `toml:"prometheus_enabled"`
	PrometheusAddr    string `toml:"prometheus_addr"`
	CloudWatchEnabled bool   `toml:"cloudwatch_enabled"`
	CloudWatchRegion  string `toml:"cloudwatch_region"`
	CloudWatchNamespace string `toml:"cloudwatch_namespace"`
}

// S3MirrorConfig gates the optional publication mirror to S3.
type S3MirrorConfig struct {
	Enabled bool   `toml:"enabled"`
	Bucket  string `toml:"bucket"`
	Prefix  string `toml:"prefix"`
	Region  string `toml:"region"`
}

// AppConfig is the root of config.toml.
type AppConfig struct {
	General    GeneralConfig     `toml:"general"`
	Retry      RetryConfig       `toml:"retry"`
	Validation ValidationConfig  `toml:"discovery"`
	Monitoring MonitoringConfig  `toml:"monitoring"`
	S3         S3MirrorConfig    `toml:"s3_mirror"`
	Logging    LoggingConfig     `toml:"logging"`
}

// GeneralConfig carries the run-wide parameters.
type GeneralConfig struct {
	GeneratedDir         string   `toml:"generated_dir"`
	QuoteFilter          []string `toml:"quote_filter"`
	MinSuccessfulSources int      `toml:"min_successful_sources"`
	WallClockBudget      time.Duration `toml:"wall_clock_budget"`
}

// LoggingConfig mirrors logger.Log.Configure's parameters.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
	MaxAge int    `toml:"max_age_days"`
}

// ConnectionPoolConfig holds per-exchange HTTP connection pool settings.
type ConnectionPoolConfig struct {
	MaxIdleConns    int           `toml:"max_idle_conns"`
	MaxConnsPerHost int           `toml:"max_conns_per_host"`
	IdleConnTimeout time.Duration `toml:"idle_conn_timeout"`
}

// RateLimitConfig sizes the golang.org/x/time/rate limiter wrapping each
// source's REST client.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// ExchangeEntry is one source's REST/WS endpoint configuration.
type ExchangeEntry struct {
	Source      string          `toml:"source"` // one of model.SourceId's String() names
	RestURL     string          `toml:"rest_url"`
	WsURL       string          `toml:"ws_url"`
	BatchSize   int             `toml:"batch_size"`
	Pool        ConnectionPoolConfig `toml:"pool"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
}

// ExchangesConfig is the root of exchanges.toml.
type ExchangesConfig struct {
	Exchange []ExchangeEntry `toml:"exchange"`
}

// DirectionEntry is one [[direction]] table in directions.toml.
type DirectionEntry struct {
	Id           int    `toml:"id"`
	Name         string `toml:"name"`
	SpotSource   string `toml:"spot_source"`
	FutureSource string `toml:"future_source"`
}

// DirectionsConfig is the root of directions.toml.
type DirectionsConfig struct {
	Direction []DirectionEntry `toml:"direction"`
}

// LoadAppConfig reads and unmarshals path into AppConfig.
func LoadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadTOML(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.General.GeneratedDir == "" {
		cfg.General.GeneratedDir = "generated"
	}
	if len(cfg.General.QuoteFilter) == 0 {
		cfg.General.QuoteFilter = []string{"USDT"}
	}
	if cfg.General.MinSuccessfulSources == 0 {
		cfg.General.MinSuccessfulSources = 6
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = 100 * time.Millisecond
	}
	if cfg.Retry.BackoffMultiplier == 0 {
		cfg.Retry.BackoffMultiplier = 2
	}
	if cfg.Validation.OverallBatchTimeout == 0 {
		cfg.Validation.OverallBatchTimeout = 90 * time.Second
	}
	if cfg.Validation.CollectDuration == 0 {
		cfg.Validation.CollectDuration = 30 * time.Second
	}
	if cfg.Validation.IdleTimeout == 0 {
		cfg.Validation.IdleTimeout = 10 * time.Second
	}
	if cfg.Validation.ReadSlice == 0 {
		cfg.Validation.ReadSlice = time.Second
	}
	if cfg.Validation.InterBatchPause == 0 {
		cfg.Validation.InterBatchPause = 500 * time.Millisecond
	}
	if cfg.Validation.ReconnectAttempts == 0 {
		cfg.Validation.ReconnectAttempts = 5
	}
	if cfg.Validation.ReconnectBaseDelay == 0 {
		cfg.Validation.ReconnectBaseDelay = 100 * time.Millisecond
	}
	if cfg.Validation.ReconnectMaxDelay == 0 {
		cfg.Validation.ReconnectMaxDelay = 30 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// LoadExchangesConfig reads and unmarshals path into ExchangesConfig.
func LoadExchangesConfig(path string) (*ExchangesConfig, error) {
	var cfg ExchangesConfig
	if err := loadTOML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDirectionsConfig reads and unmarshals path into DirectionsConfig.
func LoadDirectionsConfig(path string) (*DirectionsConfig, error) {
	var cfg DirectionsConfig
	if err := loadTOML(path, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Direction) != model.MaxDirections {
		return nil, fmt.Errorf("directions.toml: expected %d [[direction]] tables, found %d", model.MaxDirections, len(cfg.Direction))
	}
	return &cfg, nil
}

func loadTOML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ToDirectionConfigs converts DirectionsConfig into model.DirectionConfig,
// resolving each entry's named sources.
func (d *DirectionsConfig) ToDirectionConfigs() ([]model.DirectionConfig, error) {
	out := make([]model.DirectionConfig, 0, len(d.Direction))
	for _, e := range d.Direction {
		spot, err := model.SourceIdFromString(e.SpotSource)
		if err != nil {
			return nil, fmt.Errorf("direction %d (%s): spot_source: %w", e.Id, e.Name, err)
		}
		fut, err := model.SourceIdFromString(e.FutureSource)
		if err != nil {
			return nil, fmt.Errorf("direction %d (%s): future_source: %w", e.Id, e.Name, err)
		}
		out = append(out, model.DirectionConfig{
			Id:           e.Id,
			Name:         e.Name,
			SpotSource:   spot,
			FutureSource: fut,
		})
	}
	return out, nil
}

// BySource indexes ExchangesConfig.Exchange by SourceId for O(1) lookup: a
// source absent from the map yields (ExchangeEntry{}, false) and callers
// treat that as "no config, empty result" rather than an error.
func (c *ExchangesConfig) BySource() map[model.SourceId]ExchangeEntry {
	out := make(map[model.SourceId]ExchangeEntry, len(c.Exchange))
	for _, e := range c.Exchange {
		if id, err := model.SourceIdFromString(e.Source); err == nil {
			out[id] = e
		}
	}
	return out
}
