// Package observability exposes Prometheus metrics for the relay.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "babel_connected_sessions",
		Help: "Number of registered signal sessions",
	})

	activeCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "babel_active_calls",
		Help: "Number of calls in Requested or Accepted state",
	})

	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babel_calls_total",
		Help: "Total number of calls by final outcome",
	}, []string{"outcome"})

	callDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "babel_call_duration_seconds",
		Help:    "Duration of calls from request to teardown",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	recognitionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babel_recognition_requests_total",
		Help: "Audio chunks fed to the recognizer by result",
	}, []string{"status"})

	translationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babel_translation_requests_total",
		Help: "Translation attempts by result",
	}, []string{"status"})

	translationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "babel_translation_latency_seconds",
		Help:    "Translation round-trip latency",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	transcriptsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babel_transcripts_relayed_total",
		Help: "Translated utterances delivered to a call peer",
	})
)

func SessionRegistered()   { connectedSessions.Inc() }
func SessionUnregistered() { connectedSessions.Dec() }

func CallStarted() { activeCalls.Inc() }

// CallEnded records teardown of a call. outcome is one of
// "ended", "cancelled", "rejected", "timeout", "disconnected".
func CallEnded(outcome string, started time.Time) {
	activeCalls.Dec()
	callsTotal.WithLabelValues(outcome).Inc()
	callDuration.Observe(time.Since(started).Seconds())
}

func RecognitionResult(status string) {
	recognitionRequests.WithLabelValues(status).Inc()
}

func TranslationResult(status string, took time.Duration) {
	translationRequests.WithLabelValues(status).Inc()
	translationLatency.Observe(took.Seconds())
}

func TranscriptRelayed() { transcriptsRelayed.Inc() }
