// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCanceled = "canceled"
)

// Build pipeline stages.
const (
	StageAudio   = "audio"
	StageEncode  = "encode"
	StagePublish = "publish"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "respiring_builds_total",
		Help: "Video build attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure|canceled

	buildDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "respiring_build_duration_seconds",
		Help:    "End-to-end duration of video builds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	})

	buildStageDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "respiring_build_stage_duration_seconds",
		Help:    "Duration of individual build stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"}) // stage=audio|encode|publish

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "respiring_build_queue_depth",
		Help: "Number of builds waiting in the queue",
	})

	queueRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "respiring_build_queue_rejects_total",
		Help: "Total number of builds rejected because the queue was full",
	})

	activeEncodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "respiring_active_encodes",
		Help: "Number of ffmpeg encodes currently running",
	})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "respiring_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	}, []string{"outcome"}) // outcome=hit|miss

	videoSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "respiring_video_seconds_rendered_total",
		Help: "Total seconds of breathing video rendered",
	})
)

func IncBuild(outcome string)        { buildsTotal.WithLabelValues(outcome).Inc() }
func ObserveBuildDuration(s float64) { buildDurationSeconds.Observe(s) }

func ObserveBuildStage(stage string, s float64) {
	buildStageDurationSeconds.WithLabelValues(stage).Observe(s)
}

func SetQueueDepth(n int)   { queueDepth.Set(float64(n)) }
func IncQueueReject()       { queueRejectsTotal.Inc() }
func IncActiveEncodes()     { activeEncodes.Inc() }
func DecActiveEncodes()     { activeEncodes.Dec() }
func AddVideoSeconds(s int) { videoSecondsTotal.Add(float64(s)) }

func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}
