package padla

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CatalogMetrics records catalog activity.
// Use NewCatalogMetrics for OpenTelemetry metrics or NoopCatalogMetrics when disabled.
type CatalogMetrics interface {
	// RecordHit records a cache hit for name.
	RecordHit(ctx context.Context, name string)
	// RecordMiss records a cache miss for name.
	RecordMiss(ctx context.Context, name string)
	// RecordCompile records a load and compilation of name with its duration and error status.
	RecordCompile(ctx context.Context, name string, duration time.Duration, err error)
	// RecordRenderError records a failed Render of name.
	RecordRenderError(ctx context.Context, name string)
}

// NoopCatalogMetrics discards every measurement.
type NoopCatalogMetrics struct{}

func (NoopCatalogMetrics) RecordHit(context.Context, string) {}

func (NoopCatalogMetrics) RecordMiss(context.Context, string) {}

func (NoopCatalogMetrics) RecordCompile(context.Context, string, time.Duration, error) {}

func (NoopCatalogMetrics) RecordRenderError(context.Context, string) {}

// otelCatalogMetrics implements CatalogMetrics using OpenTelemetry.
type otelCatalogMetrics struct {
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	compilations metric.Int64Counter
	errors       metric.Int64Counter
	compileMs    metric.Float64Histogram
}

var (
	defaultCatalogMetrics     *otelCatalogMetrics
	defaultCatalogMetricsOnce sync.Once
	defaultCatalogMetricsErr  error
)

// NewCatalogMetrics returns CatalogMetrics backed by the global OTel meter provider.
// If instrument creation fails, it logs a warning and returns NoopCatalogMetrics.
//
// Configure the provider before the first call:
//
//	otel.SetMeterProvider(yourProvider)
func NewCatalogMetrics(logger *zap.Logger) CatalogMetrics {
	defaultCatalogMetricsOnce.Do(func() {
		defaultCatalogMetrics, defaultCatalogMetricsErr = newOtelCatalogMetrics(otel.Meter(InstrumentationName))
	})
	if defaultCatalogMetricsErr != nil {
		if logger == nil {
			logger = zap.NewNop()
		}
		logger.Warn(LogMsgMetricsInitFailed, zap.Error(defaultCatalogMetricsErr))
		return NoopCatalogMetrics{}
	}
	return defaultCatalogMetrics
}

// NewCatalogMetricsWithMeter returns CatalogMetrics recording to meter.
func NewCatalogMetricsWithMeter(meter metric.Meter) (CatalogMetrics, error) {
	return newOtelCatalogMetrics(meter)
}

func newOtelCatalogMetrics(meter metric.Meter) (*otelCatalogMetrics, error) {
	hits, err := meter.Int64Counter(MetricCatalogHits,
		metric.WithDescription("Number of catalog cache hits"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(MetricCatalogMisses,
		metric.WithDescription("Number of catalog cache misses"),
	)
	if err != nil {
		return nil, err
	}

	compilations, err := meter.Int64Counter(MetricCatalogCompilations,
		metric.WithDescription("Number of templates loaded and compiled"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(MetricCatalogErrors,
		metric.WithDescription("Number of failed loads and renders"),
	)
	if err != nil {
		return nil, err
	}

	compileMs, err := meter.Float64Histogram(MetricCatalogCompileMs,
		metric.WithDescription("Template load and compile latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelCatalogMetrics{
		hits:         hits,
		misses:       misses,
		compilations: compilations,
		errors:       errs,
		compileMs:    compileMs,
	}, nil
}

func (m *otelCatalogMetrics) RecordHit(ctx context.Context, name string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrTemplateName, name)))
}

func (m *otelCatalogMetrics) RecordMiss(ctx context.Context, name string) {
	m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrTemplateName, name)))
}

func (m *otelCatalogMetrics) RecordCompile(ctx context.Context, name string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String(AttrTemplateName, name))

	m.compilations.Add(ctx, 1, attrs)
	m.compileMs.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrTemplateName, name),
			attribute.String(AttrOperation, OperationLoad),
		))
	}
}

func (m *otelCatalogMetrics) RecordRenderError(ctx context.Context, name string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrTemplateName, name),
		attribute.String(AttrOperation, OperationRender),
	))
}

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer(InstrumentationName)

// startLoadSpan starts the span around loading and compiling a stored template.
func startLoadSpan(ctx context.Context, name, backend string) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanCatalogLoad,
		trace.WithAttributes(
			attribute.String(AttrTemplateName, name),
			attribute.String(AttrBackend, backend),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// endSpan completes span, recording err if set.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
