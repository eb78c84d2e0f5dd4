package httpmiddleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RouteFinder maps a request to the route pattern it will be served by, so
// metrics and spans carry low-cardinality route labels instead of raw paths.
type RouteFinder func(r *http.Request) (pattern string, ok bool)

// MuxRouteFinder builds a RouteFinder from an http.ServeMux by probing the
// mux's own matcher.
func MuxRouteFinder(mux *http.ServeMux) RouteFinder {
	return func(r *http.Request) (string, bool) {
		_, pattern := mux.Handler(r)
		return pattern, pattern != ""
	}
}

// Instrument returns a middleware that traces requests with otelhttp and
// records request count and duration metrics labelled by route and status.
func Instrument(service string, mp metric.MeterProvider, tp trace.TracerProvider, find RouteFinder) Middleware {
	meter := mp.Meter("httpmiddleware")

	requests, _ := meter.Int64Counter("http.server.request_count",
		metric.WithDescription("Number of HTTP requests received"),
	)
	duration, _ := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)

	return func(next http.Handler) http.Handler {
		measured := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if pattern, ok := find(r); ok {
				route = pattern
			}
			attrs := metric.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", sw.status),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), float64(time.Since(start))/float64(time.Millisecond), attrs)
		})

		return otelhttp.NewHandler(measured, service,
			otelhttp.WithMeterProvider(mp),
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if pattern, ok := find(r); ok {
					return pattern
				}
				return r.Method
			}),
		)
	}
}
