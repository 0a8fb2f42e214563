package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/authpool/internal/metrics"
	"github.com/tombee/authpool/internal/tracing"
)

// loggingTransport wraps an http.RoundTripper to add:
// - Request logging with sanitized URLs
// - User-Agent header injection
// - Correlation ID propagation
// - Request counting
type loggingTransport struct {
	base      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

func newLoggingTransport(base http.RoundTripper, userAgent string, logger *slog.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &loggingTransport{
		base:      base,
		userAgent: userAgent,
		logger:    logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	corrID := tracing.FromContextOrEmpty(req.Context())
	if req.Header.Get("User-Agent") == "" || corrID.IsValid() {
		req = req.Clone(req.Context())
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", t.userAgent)
		}
		if corrID.IsValid() {
			req.Header.Set(tracing.HeaderCorrelationID, corrID.String())
		}
	}

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	logURL := sanitizeURL(req.URL)

	if err != nil {
		metrics.RecordRequest(req.Method, 0)
		t.logger.Warn("http request failed",
			"method", req.Method,
			"url", logURL,
			"duration_ms", duration,
			"correlation_id", corrID.String(),
			"error", err.Error(),
		)
		return nil, err
	}

	metrics.RecordRequest(req.Method, resp.StatusCode)
	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(req.Context(), level, "http request",
		"method", req.Method,
		"url", logURL,
		"status", resp.StatusCode,
		"duration_ms", duration,
		"correlation_id", corrID.String(),
	)

	return resp, nil
}
