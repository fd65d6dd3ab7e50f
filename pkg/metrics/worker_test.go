package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkerMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerMetrics(reg)

	m.ObserveDuration("outbox-publish", 250*time.Millisecond)
	m.IncSuccess("outbox-publish")
	m.IncSuccess("outbox-publish")
	m.IncFailure("outbox-publish")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, family := range families {
		byName[family.GetName()] = family
	}

	success := byName["worker_task_success_total"]
	if success == nil || len(success.Metric) != 1 {
		t.Fatal("missing success counter")
	}
	if got := success.Metric[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("success = %v", got)
	}

	failure := byName["worker_task_failure_total"]
	if failure == nil || failure.Metric[0].GetCounter().GetValue() != 1 {
		t.Fatal("missing failure counter")
	}

	duration := byName["worker_task_duration_seconds"]
	if duration == nil || duration.Metric[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatal("missing duration histogram sample")
	}
}

func TestWorkerMetricsNilSafe(t *testing.T) {
	var m *WorkerMetrics
	m.ObserveDuration("x", time.Second)
	m.IncSuccess("x")
	m.IncFailure("x")

	empty := NewWorkerMetrics(nil)
	empty.IncSuccess("x")
}

func TestNormalizeLabel(t *testing.T) {
	if normalizeLabel("") != "unknown" {
		t.Fatal("expected empty label normalized")
	}
	if normalizeLabel("publish") != "publish" {
		t.Fatal("expected label preserved")
	}
}
