// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded in the promptx_directory_fetch_total counter.
const (
	outcomeHit     = "hit"
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeShared  = "shared"
)

type metrics struct {
	fetches *prometheus.CounterVec
	roles   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptx",
			Subsystem: "directory",
			Name:      "fetch_total",
			Help:      "Role directory fetch calls by outcome.",
		}, []string{"outcome"}),
		roles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "promptx",
			Subsystem: "directory",
			Name:      "roles",
			Help:      "Roles held by the directory after the last successful fetch.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches, m.roles)
	}
	return m
}
