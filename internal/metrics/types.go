package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the recording surface used by handlers and engines.
type Metrics interface {
	ObserveHTTPRequest(method string, status int, duration time.Duration)
	IncInvite(outcome string)
	ObserveSubstitution(action string)
	IncSlackNotifSent()
	IncSlackNotifFailed()
}

// Service holds all the Prometheus metrics for the application.
type Service struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	Invites          *prometheus.CounterVec
	Substitutions    *prometheus.CounterVec
	SlackNotifSent   prometheus.Counter
	SlackNotifFailed prometheus.Counter
}

// Nop discards every observation. Used when metrics are disabled.
type Nop struct{}

func (Nop) ObserveHTTPRequest(string, int, time.Duration) {}
func (Nop) IncInvite(string)                              {}
func (Nop) ObserveSubstitution(string)                    {}
func (Nop) IncSlackNotifSent()                            {}
func (Nop) IncSlackNotifFailed()                          {}
