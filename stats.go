package shadowlink

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes recorded in shadowlink_resolutions_total.
const (
	resolutionLinked   = "linked"
	resolutionExisting = "existing"
	resolutionNotFound = "not_found"
	resolutionSelf     = "self"
	resolutionError    = "error"
)

// Stats is a snapshot of session counters.
type Stats struct {
	MessagesSent     uint64
	MessagesFailed   uint64
	MessagesReceived uint64
	DecryptFailures  uint64
	Contacts         int
}

// stats holds session statistics.
type stats struct {
	reg *prometheus.Registry

	sent         prometheus.Counter
	failed       prometheus.Counter
	received     prometheus.Counter
	decryptFails prometheus.Counter
	resolutions  *prometheus.CounterVec
	contacts     prometheus.Gauge

	sentAtomic         atomic.Uint64
	failedAtomic       atomic.Uint64
	receivedAtomic     atomic.Uint64
	decryptFailsAtomic atomic.Uint64
}

func newStats(runtimeCollectors bool) *stats {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	if runtimeCollectors {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector())
	}
	return &stats{
		reg: reg,

		sent: f.NewCounter(prometheus.CounterOpts{
			Name: "shadowlink_messages_sent_total",
			Help: "Messages accepted by the transport",
		}),
		failed: f.NewCounter(prometheus.CounterOpts{
			Name: "shadowlink_messages_failed_total",
			Help: "Messages that could not be encrypted or submitted",
		}),
		received: f.NewCounter(prometheus.CounterOpts{
			Name: "shadowlink_messages_received_total",
			Help: "Inbound messages that authenticated",
		}),
		decryptFails: f.NewCounter(prometheus.CounterOpts{
			Name: "shadowlink_decrypt_failures_total",
			Help: "Inbound envelopes dropped because they did not authenticate",
		}),
		resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowlink_resolutions_total",
			Help: "Linking code resolutions by outcome",
		}, []string{"result"}),
		contacts: f.NewGauge(prometheus.GaugeOpts{
			Name: "shadowlink_contacts",
			Help: "Contacts in the registry including the assistant",
		}),
	}
}

func (s *stats) messageSent() {
	s.sent.Inc()
	s.sentAtomic.Add(1)
}

func (s *stats) messageFailed() {
	s.failed.Inc()
	s.failedAtomic.Add(1)
}

func (s *stats) messageReceived() {
	s.received.Inc()
	s.receivedAtomic.Add(1)
}

func (s *stats) decryptFailed() {
	s.decryptFails.Inc()
	s.decryptFailsAtomic.Add(1)
}

func (s *stats) resolution(result string) {
	s.resolutions.WithLabelValues(result).Inc()
}
