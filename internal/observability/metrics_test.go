package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCounterVecExposition(t *testing.T) {
	c := NewCounterVec("bp_test_total", "Test counter.", []string{"outcome"})
	c.Inc("ok")
	c.Inc("ok")
	c.Add(3, "failed")

	var buf bytes.Buffer
	if err := c.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "# TYPE bp_test_total counter") {
		t.Fatalf("missing TYPE line in output:\n%s", out)
	}
	if !strings.Contains(out, `bp_test_total{outcome="ok"} 2.0`) {
		t.Errorf("expected ok=2 sample, got:\n%s", out)
	}
	if !strings.Contains(out, `bp_test_total{outcome="failed"} 3.0`) {
		t.Errorf("expected failed=3 sample, got:\n%s", out)
	}
}

func TestHistogramVecBuckets(t *testing.T) {
	h := NewHistogramVec("bp_test_seconds", "Test histogram.", []string{"stage"}, []float64{0.1, 1})
	h.Observe(0.05, "classify")
	h.Observe(0.5, "classify")
	h.Observe(5, "classify")

	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `bp_test_seconds_bucket{stage="classify",le="0.1"} 1`) {
		t.Errorf("le=0.1 bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `bp_test_seconds_bucket{stage="classify",le="1"} 2`) {
		t.Errorf("le=1 bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `bp_test_seconds_bucket{stage="classify",le="+Inf"} 3`) {
		t.Errorf("+Inf bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `bp_test_seconds_count{stage="classify"} 3`) {
		t.Errorf("count wrong:\n%s", out)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route"}, []string{`/api/"x"`})
	want := `{route="/api/\"x\""}`
	if got != want {
		t.Fatalf("labelString = %q, want %q", got, want)
	}
	// Missing values fall back to "unknown" rather than panicking.
	got = labelString([]string{"a", "b"}, []string{"x"})
	if !strings.Contains(got, `b="unknown"`) {
		t.Fatalf("missing value not defaulted: %q", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/regions", "200", time.Millisecond)
	m.ObservePipelineStage("classify", "ok", time.Millisecond)
	m.IncForecastOutcome("ok")
	m.IncCacheOp("get", "hit")
	m.IncWorkerJob(true)
	m.ApiInflightInc()
	m.ApiInflightDec()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus errored: %v", err)
	}
}

func TestStatusClassifiers(t *testing.T) {
	if !isServerErrorStatus("500") || isServerErrorStatus("404") || isServerErrorStatus("") {
		t.Fatal("isServerErrorStatus misclassified")
	}
	if !isFailureStatus("failed") || !isFailureStatus("panic") || isFailureStatus("ok") {
		t.Fatal("isFailureStatus misclassified")
	}
}
