// Package middleware provides the Echo middleware in front of the bargain
// tracker API: panic recovery, request logging and Prometheus metrics.
package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/bargain-tracker/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, so probing
// for random paths cannot grow the label set.
const unmatchedRoute = "unmatched"

// probePaths are served without request metrics. The health probes update
// their up/down gauge instead.
var probePaths = map[string]prometheus.Gauge{
	"/metrics": nil,
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware recording request duration and count by
// method, route template and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeLabel(c)

			if gauge, probe := probePaths[route]; probe {
				err := next(c)
				if gauge != nil {
					gauge.Set(upValue(responseStatus(c, err)))
				}
				return err
			}

			start := time.Now()
			err := next(c)
			status := strconv.Itoa(responseStatus(c, err))
			if errors.Is(err, echo.ErrNotFound) {
				route = unmatchedRoute
			}

			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(c.Request().Method, route, status).
				Inc()
			return err
		}
	}
}

func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return unmatchedRoute
}

// responseStatus is the status that will be sent. An error not yet written
// by Echo's error handler is reported with its HTTP code.
func responseStatus(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		if he, ok := err.(*echo.HTTPError); ok {
			return he.Code
		}
		return 500
	}
	return c.Response().Status
}

func upValue(status int) float64 {
	if status >= 200 && status < 300 {
		return 1
	}
	return 0
}
