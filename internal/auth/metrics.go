// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status labels for login attempt metrics.
const (
	loginStatusSuccess  = "success"
	loginStatusRejected = "rejected"
	loginStatusError    = "error"
)

// LoginAttempts is the counter for login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatehouse_login_attempts_total",
		Help: "Total number of login attempts by status",
	},
	[]string{"status"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// This must be called at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
}

func recordLogin(status string) {
	LoginAttempts.WithLabelValues(status).Inc()
}
