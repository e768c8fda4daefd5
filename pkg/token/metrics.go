// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// Metrics is a hook that records call outcomes and emitted events.
type Metrics struct {
	calls    *prometheus.CounterVec
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ Hook = (*Metrics)(nil)

// NewMetrics registers token metrics with the registerer. If reg is nil the
// default registerer is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "token",
			Name:      "calls_total",
			Help:      "Number of mutating calls by operation and status",
		}, []string{"op", "status"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "token",
			Name:      "events_total",
			Help:      "Number of events emitted by kind",
		}, []string{"kind"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokenledger",
			Subsystem: "token",
			Name:      "call_duration_seconds",
			Help:      "Duration of mutating calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
	}
}

func (m *Metrics) Before(*Call) error { return nil }

func (m *Metrics) After(c *Call, err error) {
	status := errors.OK
	if err != nil {
		status = errors.Code(err)
		if status == 0 {
			status = errors.UnknownError
		}
	}
	m.calls.WithLabelValues(string(c.Op), status.String()).Inc()
	m.duration.WithLabelValues(string(c.Op)).Observe(c.Duration.Seconds())
	for _, e := range c.Events {
		m.events.WithLabelValues(string(e.Kind)).Inc()
	}
}

// Collector exports the state of a token as gauges, read on every scrape.
type Collector struct {
	token *Token

	totalIssued *prometheus.Desc
	maxSupply   *prometheus.Desc
	holders     *prometheus.Desc
	events      *prometheus.Desc
	paused      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(t *Token) *Collector {
	labels := prometheus.Labels{"symbol": t.Symbol()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("tokenledger", "ledger", name), help, nil, labels)
	}
	return &Collector{
		token:       t,
		totalIssued: desc("total_issued", "Total units in circulation"),
		maxSupply:   desc("max_supply", "Supply cap in units"),
		holders:     desc("holders", "Number of principals with a non-zero balance"),
		events:      desc("events", "Number of events in the log"),
		paused:      desc("paused", "1 if the token is paused"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalIssued
	ch <- c.maxSupply
	ch <- c.holders
	ch <- c.events
	ch <- c.paused
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	r, err := c.token.Audit()
	if err != nil {
		c.token.logger.Error("Audit failed", "error", err)
		if r == nil {
			return
		}
	}
	n, err := c.token.EventCount()
	if err != nil {
		c.token.logger.Error("Failed to collect metrics", "error", err)
		return
	}
	paused, err := c.token.Paused()
	if err != nil {
		c.token.logger.Error("Failed to collect metrics", "error", err)
		return
	}

	var p float64
	if paused {
		p = 1
	}
	ch <- prometheus.MustNewConstMetric(c.totalIssued, prometheus.GaugeValue, toFloat(r.TotalIssued))
	ch <- prometheus.MustNewConstMetric(c.maxSupply, prometheus.GaugeValue, toFloat(r.MaxSupply))
	ch <- prometheus.MustNewConstMetric(c.holders, prometheus.GaugeValue, float64(r.Holders))
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.GaugeValue, float64(n))
	ch <- prometheus.MustNewConstMetric(c.paused, prometheus.GaugeValue, p)
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
