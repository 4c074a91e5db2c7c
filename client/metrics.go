package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "chlorostart"

type metrics struct {
	events         *prometheus.CounterVec
	unknownEvents  *prometheus.CounterVec
	requests       *prometheus.CounterVec
	protocolErrors *prometheus.CounterVec
	framesPresent  prometheus.Counter
	framesSkipped  prometheus.Counter
	frameDuration  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Total number of events dispatched, by interface and event",
		}, []string{"interface", "event"}),

		unknownEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unknown_events_total",
			Help:      "Total number of events from unknown objects or with unknown opcodes",
		}, []string{"interface"}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of requests sent, by interface and request",
		}, []string{"interface", "request"}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of errors reported by the compositor, by object interface",
		}, []string{"interface"}),

		framesPresent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_presented_total",
			Help:      "Total number of frames drawn and committed",
		}),

		framesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_skipped_total",
			Help:      "Total number of frame callbacks where the next buffer was still held by the compositor",
		}),

		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "frame_render_seconds",
			Help:      "Time spent drawing and committing a frame",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}
