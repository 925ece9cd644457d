package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

func rateSeries(title, description string) *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// TasksEnqueued returns a timeseries panel of tasks enqueued per minute.
func TasksEnqueued() *timeseries.PanelBuilder {
	return rateSeries("Tasks Enqueued / min", "Monitoring tasks placed on the queue by distribution").
		WithTarget(PromQuery(`bt:tasks_enqueued:rate5m * 60`, "tasks/min", "A"))
}

// TaskOutcomes returns a timeseries panel of task outcomes per
// minute, one series per outcome kind.
func TaskOutcomes() *timeseries.PanelBuilder {
	return rateSeries("Task Outcomes / min", "Processed tasks by outcome").
		WithTarget(PromQuery(`bt:task_outcomes:rate5m * 60`, "{{outcome}}", "A")).
		Legend(TableLegend("mean", "max"))
}

// DistributionDuration returns a timeseries panel of the p95 distribution
// run duration.
func DistributionDuration() *timeseries.PanelBuilder {
	return rateSeries("Distribution Duration (p95)", "95th percentile time to enqueue the catalog").
		WithTarget(PromQuery(Quantile(0.95, "bt_distribution_duration_seconds"), "p95", "A")).
		Unit("s")
}

// WriteConflicts returns a timeseries panel of lost conditional price
// writes and task panics.
func WriteConflicts() *timeseries.PanelBuilder {
	return rateSeries("Lost Writes & Panics", "Conditional price updates that lost a race, and recovered task panics").
		WithTarget(PromQuery(`sum(increase(bt_conditional_write_lost_total{job="bargain-tracker"}[15m]))`, "write lost", "A")).
		WithTarget(PromQuery(`sum(increase(bt_task_panics_total{job="bargain-tracker"}[15m]))`, "panics", "B")).
		WithTarget(PromQuery(`sum(increase(bt_queue_receive_errors_total{job="bargain-tracker"}[15m]))`, "receive errors", "C"))
}

// FetchLatency returns a timeseries panel of p95 product page fetch
// latency.
func FetchLatency() *timeseries.PanelBuilder {
	return rateSeries("Fetch Latency (p95)", "95th percentile product page fetch duration").
		WithTarget(PromQuery(Quantile(0.95, "bt_fetch_duration_seconds"), "p95", "A")).
		Unit("s")
}

// FetchFailures returns a timeseries panel of failed fetches per minute.
func FetchFailures() *timeseries.PanelBuilder {
	return rateSeries("Fetch Failures / min", "Product pages that could not be fetched or parsed").
		WithTarget(PromQuery(`bt:fetch_failures:rate5m * 60`, "failures/min", "A")).
		Thresholds(ThresholdsGreenYellowRed(0.5, 5)).
		ColorScheme(ColorSchemeThresholds())
}

// NotificationsSent returns a timeseries panel of notifications delivered
// and channels created per minute.
func NotificationsSent() *timeseries.PanelBuilder {
	return rateSeries("Notifications / min", "Price change messages published and channels created").
		WithTarget(PromQuery(`bt:notifications_sent:rate5m * 60`, "sent", "A")).
		WithTarget(PromQuery(`sum(rate(bt_channels_created_total{job="bargain-tracker"}[5m])) * 60`, "channels created", "B"))
}

// NotificationFailures returns a timeseries panel of publish failures by
// channel service error code.
func NotificationFailures() *timeseries.PanelBuilder {
	return rateSeries("Notification Failures", "Failed publishes by error code").
		WithTarget(PromQuery(
			`sum(increase(bt_notification_failures_total{job="bargain-tracker"}[5m])) by (code)`,
			"{{code}}", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds())
}
