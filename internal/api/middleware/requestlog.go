package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the echo.Context key holding the request id.
const requestIDKey = "request_id"

// RequestID returns the id RequestLog assigned to the request, if any.
func RequestID(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// probeState remembers whether each health probe last succeeded, so repeated
// successful probes are logged once.
type probeState struct {
	mu sync.Mutex
	ok map[string]bool
}

// quiet reports whether this probe result repeats an already logged success.
func (p *probeState) quiet(path string, status int) bool {
	if path != "/healthz" && path != "/readyz" {
		return false
	}
	success := status >= 200 && status < 300

	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.ok[path]
	p.ok[path] = success
	return success && was
}

// RequestLog returns Echo middleware logging one line per request. Server
// errors log at error level and client errors at warn. Successful health
// probes are logged only when they recover. A request id is taken from
// X-Request-ID or generated, and echoed back in the response.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	probes := &probeState{ok: make(map[string]bool)}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set(requestIDKey, reqID)
			c.Response().Header().Set(RequestIDHeader, reqID)

			err := next(c)
			status := responseStatus(c, err)
			if probes.quiet(c.Request().URL.Path, status) {
				return err
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"request_id", reqID,
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			log.Log(c.Request().Context(), level, "request", attrs...)

			return err
		}
	}
}
