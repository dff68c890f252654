// SPDX-License-Identifier: MIT
package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/danibene/respiring/internal/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	promhttp.Handler().ServeHTTP(recorder, req)
	return recorder.Body.String()
}

func TestBuildMetricsExposed(t *testing.T) {
	metrics.IncBuild(metrics.OutcomeSuccess)
	metrics.IncBuild(metrics.OutcomeFailure)
	metrics.ObserveBuildDuration(12.5)
	metrics.ObserveBuildStage(metrics.StageAudio, 0.2)
	metrics.ObserveBuildStage(metrics.StageEncode, 9.1)
	metrics.ObserveBuildStage(metrics.StagePublish, 0.05)
	metrics.SetQueueDepth(3)
	metrics.IncQueueReject()
	metrics.AddVideoSeconds(60)

	body := scrape(t)

	for _, want := range []string{
		"respiring_builds_total",
		`outcome="success"`,
		`outcome="failure"`,
		"respiring_build_duration_seconds",
		"respiring_build_stage_duration_seconds",
		`stage="audio"`,
		`stage="encode"`,
		`stage="publish"`,
		"respiring_build_queue_depth",
		"respiring_build_queue_rejects_total",
		"respiring_video_seconds_rendered_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestActiveEncodesGauge(t *testing.T) {
	metrics.IncActiveEncodes()
	metrics.IncActiveEncodes()
	metrics.DecActiveEncodes()

	body := scrape(t)
	if !strings.Contains(body, "respiring_active_encodes 1") {
		t.Errorf("expected respiring_active_encodes 1 in metrics output")
	}
}

func TestCacheLookupOutcomes(t *testing.T) {
	metrics.RecordCacheLookup(true)
	metrics.RecordCacheLookup(false)

	body := scrape(t)
	if !strings.Contains(body, `respiring_cache_lookups_total{outcome="hit"}`) {
		t.Error("expected hit outcome in metrics output")
	}
	if !strings.Contains(body, `respiring_cache_lookups_total{outcome="miss"}`) {
		t.Error("expected miss outcome in metrics output")
	}
}

func TestBuildStageHistogramSamples(t *testing.T) {
	metrics.ObserveBuildStage(metrics.StageEncode, 1.5)
	metrics.ObserveBuildStage(metrics.StageEncode, 2.5)

	mf := findMetricFamily(t, "respiring_build_stage_duration_seconds")
	var count uint64
	for _, m := range mf.Metric {
		if labelsMatch(m.GetLabel(), map[string]string{"stage": metrics.StageEncode}) {
			count = m.GetHistogram().GetSampleCount()
		}
	}
	// Other tests in the package observe this stage too.
	if count < 2 {
		t.Errorf("encode stage sample count = %d, want at least 2", count)
	}
}

func findMetricFamily(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func labelsMatch(pairs []*dto.LabelPair, labels map[string]string) bool {
	if len(pairs) != len(labels) {
		return false
	}
	for _, pair := range pairs {
		if labels[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}

func TestHTTPRequestMetrics(t *testing.T) {
	metrics.RecordHTTPRequest(http.MethodGet, "/api/v1/videos", http.StatusOK, 0.012)
	metrics.RecordHTTPRequest(http.MethodPost, "/api/v1/videos", http.StatusAccepted, 0.3)

	body := scrape(t)
	if !strings.Contains(body, "respiring_http_requests_total") {
		t.Error("expected respiring_http_requests_total in metrics output")
	}
	if !strings.Contains(body, `route="/api/v1/videos"`) {
		t.Error("expected route label in metrics output")
	}
	if !strings.Contains(body, `status="202"`) {
		t.Error("expected status label in metrics output")
	}
}
