package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordTransition(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTransition(ctx, "Idle", "Listening")
	m.RecordTransition(ctx, "Idle", "Listening")
	m.RecordTransition(ctx, "Listening", "Error")

	met := findMetric(collect(t, reader), "jarvis.phase.transitions")
	if met == nil {
		t.Fatal("jarvis.phase.transitions not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("Expected Sum[int64], got %T", met.Data)
	}

	want := attribute.NewSet(attribute.String("from", "Idle"), attribute.String("to", "Listening"))
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			if dp.Value != 2 {
				t.Errorf("Expected 2 Idle->Listening transitions, got %d", dp.Value)
			}
			return
		}
	}
	t.Error("Idle->Listening data point not found")
}

func TestRecordIntentAndErrors(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordIntent(ctx, "greeting")
	m.RecordCaptureError(ctx)
	m.RecordUtterance(ctx, "ok")
	m.RecordCaptureDuration(ctx, 1.2)

	rm := collect(t, reader)
	for _, name := range []string{
		"jarvis.intent.matches",
		"jarvis.capture.errors",
		"jarvis.utterances",
		"jarvis.capture.duration",
	} {
		if findMetric(rm, name) == nil {
			t.Errorf("%s not recorded", name)
		}
	}

	hist, ok := findMetric(rm, "jarvis.capture.duration").Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("Expected float64 histogram for capture duration")
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("Expected one observation, got %+v", hist.DataPoints)
	}
}
