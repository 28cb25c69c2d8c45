package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

// AdmissionMetrics counts vote attempts per poll and outcome. It owns its
// registry so tests can build as many as they like.
type AdmissionMetrics struct {
	registry *prometheus.Registry
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

func NewAdmissionMetrics(namespace string) *AdmissionMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &AdmissionMetrics{
		registry: reg,
		accepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "votes",
				Name:      "accepted_total",
				Help:      "Vote submissions written to the ledger",
			},
			[]string{"poll_id", "kind"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "votes",
				Name:      "rejected_total",
				Help:      "Vote submissions refused, by reason",
			},
			[]string{"poll_id", "reason"},
		),
	}
	reg.MustRegister(m.accepted, m.rejected)
	return m
}

func (m *AdmissionMetrics) Accepted(pollID int64, amended bool) {
	kind := "cast"
	if amended {
		kind = "amend"
	}
	m.accepted.WithLabelValues(strconv.FormatInt(pollID, 10), kind).Inc()
}

func (m *AdmissionMetrics) Rejected(pollID int64, reason error) {
	m.rejected.WithLabelValues(strconv.FormatInt(pollID, 10), Reason(reason)).Inc()
}

func (m *AdmissionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var reasons = []struct {
	err   error
	label string
}{
	{domain.ErrPollClosed, "closed"},
	{domain.ErrPollNotOpen, "not_open"},
	{domain.ErrPollNotAnonymous, "not_anonymous"},
	{domain.ErrPollNotMultiple, "not_multiple"},
	{domain.ErrInvalidChoice, "invalid_choice"},
	{domain.ErrAlreadyVoted, "already_voted"},
	{domain.ErrCommentTooLong, "comment_too_long"},
	{domain.ErrUnidentifiedVoter, "unidentified"},
}

// Reason turns a rejection into a bounded label value.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "error"
}
