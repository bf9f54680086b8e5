// Package observe provides the OpenTelemetry metric instruments recorded by
// the assistant and the Prometheus bridge used to scrape them.
//
// Tests should build their own [Metrics] with [NewMetrics] and a
// [sdkmetric.ManualReader]; production code uses [DefaultMetrics], which is
// backed by the global meter provider installed by [InitProvider].
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Mayank726/jarvis-assistant"

// Metrics holds the instruments for the listening lifecycle
type Metrics struct {
	// PhaseTransitions counts state changes, attributes "from" and "to"
	PhaseTransitions metric.Int64Counter

	// IntentMatches counts resolved transcripts by catalog entry, attribute "intent"
	IntentMatches metric.Int64Counter

	// CaptureErrors counts failed capture sessions
	CaptureErrors metric.Int64Counter

	// Utterances counts speech requests, attribute "status"
	Utterances metric.Int64Counter

	// CaptureDuration tracks how long a capture session stayed in Listening
	CaptureDuration metric.Float64Histogram
}

var captureBuckets = []float64{0.5, 1, 2, 4, 8, 15, 30, 60}

// NewMetrics creates all instruments on the given provider
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.PhaseTransitions, err = m.Int64Counter("jarvis.phase.transitions",
		metric.WithDescription("Lifecycle phase transitions by source and target phase."),
	); err != nil {
		return nil, err
	}
	if met.IntentMatches, err = m.Int64Counter("jarvis.intent.matches",
		metric.WithDescription("Resolved transcripts by catalog entry."),
	); err != nil {
		return nil, err
	}
	if met.CaptureErrors, err = m.Int64Counter("jarvis.capture.errors",
		metric.WithDescription("Capture sessions that ended with an error."),
	); err != nil {
		return nil, err
	}
	if met.Utterances, err = m.Int64Counter("jarvis.utterances",
		metric.WithDescription("Speech requests by outcome."),
	); err != nil {
		return nil, err
	}
	if met.CaptureDuration, err = m.Float64Histogram("jarvis.capture.duration",
		metric.WithDescription("Time spent listening per capture session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(captureBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider. It panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	m.PhaseTransitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

func (m *Metrics) RecordIntent(ctx context.Context, intent string) {
	m.IntentMatches.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", intent)))
}

func (m *Metrics) RecordCaptureError(ctx context.Context) {
	m.CaptureErrors.Add(ctx, 1)
}

// RecordUtterance counts a speech request; status is "ok", "failed" or "rejected"
func (m *Metrics) RecordUtterance(ctx context.Context, status string) {
	m.Utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordCaptureDuration(ctx context.Context, seconds float64) {
	m.CaptureDuration.Record(ctx, seconds)
}
