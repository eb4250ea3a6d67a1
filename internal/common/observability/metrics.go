package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records automation job throughput through the OTel meter,
// exported on the same /metrics endpoint as the promauto collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	ruleOutcomes  otelmetric.Int64Counter
}

// New returns a usable instance even when the exporter cannot be built; the
// recorders then become no-ops.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"automation.jobs.processed",
		otelmetric.WithDescription("Automation dispatch jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"automation.jobs.duration",
		otelmetric.WithDescription("Automation dispatch job duration"),
		otelmetric.WithUnit("ms"),
	)
	ruleOutcomes, _ := meter.Int64Counter(
		"automation.rule.outcomes",
		otelmetric.WithDescription("Per-rule outcomes of real runs"),
	)

	return &Observability{
		meterProvider: provider,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		ruleOutcomes:  ruleOutcomes,
	}, nil
}

// NewNoop is used by tests and when metrics are disabled.
func NewNoop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordJob(ctx context.Context, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, attrs)
	}
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordRuleOutcome(ctx context.Context, trigger, status string) {
	if o == nil || o.ruleOutcomes == nil {
		return
	}
	o.ruleOutcomes.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
