// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in the configuration.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	QueueBackendPostgres = "postgres"
	QueueBackendSQS      = "sqs"

	ChannelBackendSNS = "sns"
	ChannelBackendLog = "log"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Queue     QueueConfig     `yaml:"queue"`
	Channels  ChannelsConfig  `yaml:"channels"`
	AWS       AWSConfig       `yaml:"aws"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // postgres, memory
}

// QueueConfig defines the monitoring task queue.
type QueueConfig struct {
	Backend   string        `yaml:"backend"` // postgres (task table in the configured store), sqs
	BatchSize int           `yaml:"batch_size"`
	Lease     time.Duration `yaml:"lease"` // postgres: how long a received task stays invisible
	SQS       SQSConfig     `yaml:"sqs"`
}

// SQSConfig defines Amazon SQS settings.
type SQSConfig struct {
	QueueURL          string        `yaml:"queue_url"`
	WaitTime          time.Duration `yaml:"wait_time"`
	VisibilityTimeout time.Duration `yaml:"visibility_timeout"`
}

// ChannelsConfig defines the per-email notification channel service.
type ChannelsConfig struct {
	Backend string    `yaml:"backend"` // sns, log
	SNS     SNSConfig `yaml:"sns"`
}

// SNSConfig defines Amazon SNS settings.
type SNSConfig struct {
	TopicPrefix string `yaml:"topic_prefix"`
	Protocol    string `yaml:"protocol"`
}

// AWSConfig holds settings shared by the SNS and SQS clients.
type AWSConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // optional override, e.g. localstack
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// ScraperConfig defines the product page fetcher.
type ScraperConfig struct {
	Timeout    time.Duration   `yaml:"timeout"`
	UserAgents []string        `yaml:"user_agents"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines outbound fetch rate limiting.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// ScheduleConfig defines distribution cadence and worker sizing.
type ScheduleConfig struct {
	DistributionInterval time.Duration `yaml:"distribution_interval"`
	Workers              int           `yaml:"workers"`
	PollInterval         time.Duration `yaml:"poll_interval"`
	LockTTL              time.Duration `yaml:"lock_ttl"`
}

// TelemetryConfig defines OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"`
	OTLPEndpoint   string        `yaml:"otlp_endpoint"`
	Insecure       bool          `yaml:"insecure"`
	ServiceName    string        `yaml:"service_name"`
	ExportInterval time.Duration `yaml:"export_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse expands environment variables in raw YAML, decodes it, applies
// defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyStoreDefaults(&cfg.Store)
	applyQueueDefaults(&cfg.Queue)
	applyChannelsDefaults(&cfg.Channels)
	applyAWSDefaults(&cfg.AWS)
	applyScraperDefaults(&cfg.Scraper)
	applyScheduleDefaults(&cfg.Schedule)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Backend == "" {
		s.Backend = StoreBackendPostgres
	}
}

func applyQueueDefaults(q *QueueConfig) {
	if q.Backend == "" {
		q.Backend = QueueBackendPostgres
	}
	if q.BatchSize == 0 {
		q.BatchSize = 10
	}
	if q.Lease == 0 {
		q.Lease = 5 * time.Minute
	}
	if q.SQS.WaitTime == 0 {
		q.SQS.WaitTime = 20 * time.Second
	}
	if q.SQS.VisibilityTimeout == 0 {
		q.SQS.VisibilityTimeout = 5 * time.Minute
	}
}

func applyChannelsDefaults(c *ChannelsConfig) {
	if c.Backend == "" {
		c.Backend = ChannelBackendLog
	}
	if c.SNS.Protocol == "" {
		c.SNS.Protocol = "email"
	}
}

func applyAWSDefaults(a *AWSConfig) {
	if a.Region == "" {
		a.Region = "ap-south-1"
	}
}

func applyScraperDefaults(s *ScraperConfig) {
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.RateLimit.PerSecond == 0 {
		s.RateLimit.PerSecond = 2.0
	}
	if s.RateLimit.Burst == 0 {
		s.RateLimit.Burst = 4
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.DistributionInterval == 0 {
		s.DistributionInterval = 6 * time.Hour
	}
	if s.Workers == 0 {
		s.Workers = 4
	}
	if s.PollInterval == 0 {
		s.PollInterval = 5 * time.Second
	}
	if s.LockTTL == 0 {
		s.LockTTL = 10 * time.Minute
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "bargain-tracker"
	}
	if t.OTLPEndpoint == "" {
		t.OTLPEndpoint = "localhost:4317"
	}
	if t.ExportInterval == 0 {
		t.ExportInterval = time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Store.Backend {
	case StoreBackendPostgres:
		errs = append(errs, validateDatabase(&cfg.Database)...)
	case StoreBackendMemory:
	default:
		errs = append(errs, fmt.Errorf(
			"store.backend must be one of: postgres, memory (got %q)", cfg.Store.Backend,
		))
	}

	switch cfg.Queue.Backend {
	case QueueBackendPostgres:
	case QueueBackendSQS:
		if cfg.Queue.SQS.QueueURL == "" {
			errs = append(errs, fmt.Errorf("queue.sqs.queue_url is required when backend is sqs"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"queue.backend must be one of: postgres, sqs (got %q)", cfg.Queue.Backend,
		))
	}

	if cfg.Queue.BatchSize < 1 || cfg.Queue.BatchSize > 10 {
		errs = append(errs, fmt.Errorf("queue.batch_size must be between 1 and 10 (got %d)", cfg.Queue.BatchSize))
	}

	switch cfg.Channels.Backend {
	case ChannelBackendSNS, ChannelBackendLog:
	default:
		errs = append(errs, fmt.Errorf(
			"channels.backend must be one of: sns, log (got %q)", cfg.Channels.Backend,
		))
	}

	if cfg.Schedule.Workers < 1 {
		errs = append(errs, fmt.Errorf("schedule.workers must be at least 1"))
	}

	return errors.Join(errs...)
}

func validateDatabase(d *DatabaseConfig) []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	return errs
}
