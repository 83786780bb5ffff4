package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	_ Metrics = (*Service)(nil)
	_ Metrics = Nop{}
)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sideline_http_requests_total",
			Help: "The total number of HTTP requests served.",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sideline_http_request_duration_seconds",
			Help:    "The duration of HTTP requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		Invites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sideline_invites_total",
			Help: "The total number of invite requests by outcome.",
		}, []string{"outcome"}),
		Substitutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sideline_substitutions_total",
			Help: "The total number of substitution operations by action.",
		}, []string{"action"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sideline_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sideline_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
	}

	reg.MustRegister(
		s.HTTPRequests,
		s.HTTPDuration,
		s.Invites,
		s.Substitutions,
		s.SlackNotifSent,
		s.SlackNotifFailed,
	)

	return s
}

func (s *Service) ObserveHTTPRequest(method string, status int, duration time.Duration) {
	s.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	s.HTTPDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (s *Service) IncInvite(outcome string) {
	s.Invites.WithLabelValues(outcome).Inc()
}

func (s *Service) ObserveSubstitution(action string) {
	s.Substitutions.WithLabelValues(action).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}
