// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/bargain-tracker/tools/dashgen/rules"
)

// Result collects validation problems. Errors fail generation; warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Expr parses expr and checks each selected metric against known. The
// "_bucket" suffix of histogram series is ignored for the lookup.
func Expr(expr string, known map[string]bool) []string {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return []string{fmt.Sprintf("parsing %q: %v", expr, err)}
	}

	var problems []string
	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		name := vs.Name
		if !known[name] && !known[strings.TrimSuffix(name, "_bucket")] {
			problems = append(problems, fmt.Sprintf("unknown metric %q in %q", name, expr))
		}
		return nil
	})
	return problems
}

// Dashboard validates every Prometheus target of every panel in dash,
// including panels nested in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) *Result {
	r := &Result{}
	for _, p := range dash.Panels {
		switch {
		case p.Panel != nil:
			validatePanel(r, p.Panel, known)
		case p.RowPanel != nil:
			for i := range p.RowPanel.Panels {
				validatePanel(r, &p.RowPanel.Panels[i], known)
			}
		}
	}
	return r
}

func validatePanel(r *Result, p *dashboard.Panel, known map[string]bool) {
	title := ""
	if p.Title != nil {
		title = *p.Title
	}
	if len(p.Targets) == 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("panel %q has no targets", title))
	}
	for _, target := range p.Targets {
		expr, err := targetExpr(target)
		if err != nil {
			r.errorf("panel %q: %v", title, err)
			continue
		}
		for _, problem := range Expr(expr, known) {
			r.errorf("panel %q: %s", title, problem)
		}
	}
}

// targetExpr reads the expr field through the target's JSON form, which is
// the same for every dataquery variant.
func targetExpr(target any) (string, error) {
	data, err := json.Marshal(target)
	if err != nil {
		return "", fmt.Errorf("encoding target: %w", err)
	}
	var q struct {
		Expr string `json:"expr"`
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return "", fmt.Errorf("decoding target: %w", err)
	}
	if q.Expr == "" {
		return "", fmt.Errorf("target has no expr")
	}
	return q.Expr, nil
}

// Rules validates the expression of every rule in cr.
func Rules(cr rules.PrometheusRule, known map[string]bool) *Result {
	r := &Result{}
	for _, g := range cr.Spec.Groups {
		for _, rule := range g.Rules {
			name := rule.Record + rule.Alert
			for _, problem := range Expr(rule.Expr, known) {
				r.errorf("rule %q: %s", name, problem)
			}
		}
	}
	return r
}
