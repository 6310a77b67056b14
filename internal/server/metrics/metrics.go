// Package metrics collects Prometheus metrics for the wallet server and
// serves them together with a health probe.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what services and workers report to.
type Recorder interface {
	RecordAuth(result string)
	RecordLogin(result string)
	RecordTransfer(result string)
	RecordNotificationFailure(kind string)
	RecordPurge(removed int64)
	SetBlacklistSize(n int64)
}

// Collector is the Prometheus Recorder.
type Collector struct {
	auth          *prometheus.CounterVec
	login         *prometheus.CounterVec
	transfers     *prometheus.CounterVec
	notifyFail    *prometheus.CounterVec
	purged        prometheus.Counter
	blacklistSize prometheus.Gauge
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_auth_checks_total",
			Help: "Bearer token checks by outcome.",
		}, []string{"result"}),
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"result"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_transfers_total",
			Help: "Transfers by outcome.",
		}, []string{"result"}),
		notifyFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_notification_failures_total",
			Help: "Dropped transfer notifications.",
		}, []string{"kind"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wallet_blacklist_purged_total",
			Help: "Expired blacklist entries removed.",
		}),
		blacklistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_blacklist_size",
			Help: "Blacklist entries after the last cleanup run.",
		}),
	}

	reg.MustRegister(c.auth, c.login, c.transfers, c.notifyFail, c.purged, c.blacklistSize)

	return c
}

func (c *Collector) RecordAuth(result string) {
	c.auth.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.login.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTransfer(result string) {
	c.transfers.WithLabelValues(result).Inc()
}

func (c *Collector) RecordNotificationFailure(kind string) {
	c.notifyFail.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordPurge(removed int64) {
	c.purged.Add(float64(removed))
}

func (c *Collector) SetBlacklistSize(n int64) {
	c.blacklistSize.Set(float64(n))
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAuth(string)                {}
func (Nop) RecordLogin(string)               {}
func (Nop) RecordTransfer(string)            {}
func (Nop) RecordNotificationFailure(string) {}
func (Nop) RecordPurge(int64)                {}
func (Nop) SetBlacklistSize(int64)           {}
