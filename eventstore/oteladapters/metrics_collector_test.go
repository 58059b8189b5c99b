package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/leaseworks/rentledger/eventstore/oteladapters"
)

func newCollectorWithReader() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("rentledger")), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration_RecordsSeconds(t *testing.T) {
	// arrange
	collector, reader := newCollectorWithReader()
	labels := map[string]string{"operation": "append", "status": "success"}

	// act
	collector.RecordDuration("eventstore_append_duration_seconds", 150*time.Millisecond, labels)

	// assert
	histogram := findHistogramMetric(t, collectMetrics(t, reader), "eventstore_append_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("operation", "append"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter_Accumulates(t *testing.T) {
	// arrange
	collector, reader := newCollectorWithReader()
	labels := map[string]string{"operation": "notification_append"}

	// act
	collector.IncrementCounter("eventstore_operations_total", labels)
	collector.IncrementCounter("eventstore_operations_total", labels)
	collector.IncrementCounter("eventstore_operations_total", labels)

	// assert
	counter := findCounterMetric(t, collectMetrics(t, reader), "eventstore_operations_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue_RecordsGauge(t *testing.T) {
	// arrange
	collector, reader := newCollectorWithReader()

	// act
	collector.RecordValue("eventstore_log_head_position", 42.0, map[string]string{"log": "notifications_unit"})

	// assert
	gauge := findGaugeMetric(t, collectMetrics(t, reader), "eventstore_log_head_position")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 42.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_ContextualMethods_Record(t *testing.T) {
	// arrange
	collector, reader := newCollectorWithReader()
	ctx := context.Background()
	labels := map[string]string{"source": "contextual"}

	// act
	collector.RecordDurationContext(ctx, "ctx_duration", 100*time.Millisecond, labels)
	collector.IncrementCounterContext(ctx, "ctx_counter", labels)
	collector.RecordValueContext(ctx, "ctx_gauge", 1.5, labels)

	// assert
	resourceMetrics := collectMetrics(t, reader)
	names := make(map[string]bool)
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			names[m.Name] = true
		}
	}

	assert.True(t, names["ctx_duration"])
	assert.True(t, names["ctx_counter"])
	assert.True(t, names["ctx_gauge"])
}

func Test_MetricsCollector_NilLabels_StillRecords(t *testing.T) {
	// arrange
	collector, reader := newCollectorWithReader()

	// act
	collector.RecordDuration("bare_metric", 50*time.Millisecond, nil)

	// assert
	histogram := findHistogramMetric(t, collectMetrics(t, reader), "bare_metric")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
}

func Test_MetricsCollector_ReusesInstrumentsPerName(t *testing.T) {
	// arrange
	collector, reader := newCollectorWithReader()

	// act - both measurements must land in the same histogram
	collector.RecordDuration("reused_duration", 100*time.Millisecond, nil)
	collector.RecordDuration("reused_duration", 200*time.Millisecond, nil)

	// assert
	histogram := findHistogramMetric(t, collectMetrics(t, reader), "reused_duration")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(2), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.3, histogram.DataPoints[0].Sum, 0.001)
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				if histogram, ok := m.Data.(metricdata.Histogram[float64]); ok {
					return histogram
				}
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)

	return metricdata.Histogram[float64]{}
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				if counter, ok := m.Data.(metricdata.Sum[int64]); ok {
					return counter
				}
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)

	return metricdata.Sum[int64]{}
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				if gauge, ok := m.Data.(metricdata.Gauge[float64]); ok {
					return gauge
				}
			}
		}
	}

	t.Fatalf("gauge metric %s not found", name)

	return metricdata.Gauge[float64]{}
}
