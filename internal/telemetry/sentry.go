// Package telemetry provides Sentry-based tracing and error capture.
package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

const serverName = "shopdesk"

// Probe transactions are never sampled
var unsampledTransactions = map[string]bool{
	"GET /":       true,
	"GET /health": true,
}

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
}

// Init initializes Sentry with tracing and returns a function that flushes
// buffered events. Without a DSN, or when the client cannot be created, it
// returns a no-op and the service runs untraced.
func Init(cfg Config, logger zerolog.Logger) (func(), error) {
	noop := func() {}
	if cfg.DSN == "" {
		return noop, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       serverName,
		Debug:            cfg.Debug,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		TracesSampler: func(ctx sentry.SamplingContext) float64 {
			return sampleRate(ctx.Span, cfg.TracesSampleRate)
		},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("sentry: failed to initialize, continuing without tracing")
		return noop, nil
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("release", cfg.Release).
		Float64("sample_rate", cfg.TracesSampleRate).
		Msg("sentry: tracing initialized")

	return func() { sentry.Flush(5 * time.Second) }, nil
}

// sampleRate drops probe transactions and makes child spans follow their parent
func sampleRate(span *sentry.Span, rate float64) float64 {
	if span == nil {
		return rate
	}
	if unsampledTransactions[span.Name] {
		return 0
	}
	var root sentry.SpanID
	if span.ParentSpanID != root {
		if span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return rate
}

// SpanAttributes are the tags shared by service spans. Empty fields are skipped.
type SpanAttributes struct {
	Tenant    string
	Intent    string
	Operation string
}

// Span is a thin handle over a Sentry span. The zero value is inert.
type Span struct {
	inner *sentry.Span
}

// StartSpan opens a child of the span already in ctx, or a new transaction
// when there is none, and returns the context carrying it.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	s := &Span{inner: span}
	s.SetTag("tenant", attrs.Tenant)
	s.SetTag("intent", attrs.Intent)
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}
	return span.Context(), s
}

func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetTag tags the span, e.g. with the intent once the message is classified.
func (s *Span) SetTag(name, value string) {
	if s.inner != nil && value != "" {
		s.inner.SetTag(name, value)
	}
}

// SetError marks the span failed and reports err on the span's hub.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	CaptureError(s.inner.Context(), err)
}

func hubFor(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// CaptureError reports err on the request's hub, or the global one.
func CaptureError(ctx context.Context, err error) {
	hubFor(ctx).CaptureException(err)
}

// AddBreadcrumb records an info breadcrumb on the request's hub.
func AddBreadcrumb(ctx context.Context, category, message string) {
	hubFor(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}, nil)
}
