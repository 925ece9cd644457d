package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// bargain-tracker operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "bt-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "bt-alerts",
					Rules: []Rule{
						{
							Alert: "BargainTrackerDown",
							Expr:  `absent(up{job="bargain-tracker"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Bargain tracker is down",
								"description": "The bargain-tracker job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "BargainTrackerReadinessDown",
							Expr:  `bt_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Bargain tracker readiness check is failing",
								"description": "The store has been unreachable from the readiness probe for more than 2 minutes.",
							},
						},
						{
							Alert: "BargainTrackerHighErrorRate",
							Expr:  `bt:http_errors:rate5m / bt:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on the bargain tracker API",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "BargainTrackerDistributionStalled",
							Expr:  `time() - bt_scheduler_next_distribution_timestamp > 900`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Scheduled distribution is overdue",
								"description": "The next distribution time passed more than 15 minutes ago without the scheduler advancing it.",
							},
						},
						{
							Alert: "BargainTrackerFetchFailures",
							Expr:  `bt:fetch_failures:rate5m > 0.2`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Product page fetches are failing",
								"description": "Fetch failures have exceeded 0.2/s for 15 minutes; a retailer may be blocking requests or has changed its markup.",
							},
						},
						{
							Alert: "BargainTrackerTaskPanics",
							Expr:  `increase(bt_task_panics_total[10m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Task processing panicked",
								"description": "A worker recovered from a panic; the task was left on the queue for redelivery.",
							},
						},
						{
							Alert: "BargainTrackerNotificationFailures",
							Expr:  `increase(bt_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more price change notifications failed to publish to their channel.",
							},
						},
					},
				},
			},
		},
	}
}
