package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "bt-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "bt-recording",
					Rules: []Rule{
						{
							Record: "bt:http_requests:rate5m",
							Expr:   `sum(rate(bt_http_requests_total[5m]))`,
						},
						{
							Record: "bt:http_errors:rate5m",
							Expr:   `sum(rate(bt_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "bt:tasks_enqueued:rate5m",
							Expr:   `sum(rate(bt_tasks_enqueued_total[5m]))`,
						},
						{
							Record: "bt:task_outcomes:rate5m",
							Expr:   `sum(rate(bt_task_outcomes_total[5m])) by (outcome)`,
						},
						{
							Record: "bt:fetch_failures:rate5m",
							Expr:   `sum(rate(bt_fetch_failures_total[5m]))`,
						},
						{
							Record: "bt:notifications_sent:rate5m",
							Expr:   `sum(rate(bt_notifications_sent_total[5m]))`,
						},
					},
				},
			},
		},
	}
}
