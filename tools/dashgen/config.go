package main

import "errors"

// KnownMetrics is the set of metric names exported by bargain-tracker
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"bt_http_request_duration_seconds": true,
	"bt_http_requests_total":           true,
	"bt_http_panics_total":             true,

	// Health metrics.
	"bt_healthz_up": true,
	"bt_readyz_up":  true,

	// Distribution metrics.
	"bt_tasks_enqueued_total":                  true,
	"bt_distribution_duration_seconds":         true,
	"bt_scheduler_next_distribution_timestamp": true,

	// Processing metrics.
	"bt_task_outcomes_total":          true,
	"bt_fetch_duration_seconds":       true,
	"bt_fetch_failures_total":         true,
	"bt_conditional_write_lost_total": true,
	"bt_queue_receive_errors_total":   true,
	"bt_task_panics_total":            true,
	"bt_notifications_sent_total":     true,
	"bt_notification_failures_total":  true,
	"bt_channels_created_total":       true,

	// Recording rules.
	"bt:http_requests:rate5m":      true,
	"bt:http_errors:rate5m":        true,
	"bt:tasks_enqueued:rate5m":     true,
	"bt:task_outcomes:rate5m":      true,
	"bt:fetch_failures:rate5m":     true,
	"bt:notifications_sent:rate5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
