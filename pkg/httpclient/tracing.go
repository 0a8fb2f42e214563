package httpclient

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/authpool/internal/tracing"
)

const tracerName = "github.com/tombee/authpool/pkg/httpclient"

// tracingTransport starts a client span per request and injects the trace
// context into the outgoing headers.
type tracingTransport struct {
	base   http.RoundTripper
	tracer trace.Tracer
}

func newTracingTransport(base http.RoundTripper, tp trace.TracerProvider) *tracingTransport {
	return &tracingTransport{
		base:   base,
		tracer: tp.Tracer(tracerName),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("server.address", req.URL.Hostname()),
			attribute.String("url.full", sanitizeURL(req.URL)),
		),
	)
	defer span.End()

	req = req.Clone(ctx)
	tracing.InjectHTTPHeaders(ctx, req)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}
