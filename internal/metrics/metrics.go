// Package metrics exposes the Prometheus instruments for the auth
// subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login outcomes by status
	// (success, unauthorized, error).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindwell_login_attempts_total",
		Help: "The total number of login attempts by outcome",
	}, []string{"status"})

	// RegistrationAttempts counts registration outcomes by status
	// (success, conflict, error).
	RegistrationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindwell_registration_attempts_total",
		Help: "The total number of registration attempts by outcome",
	}, []string{"status"})

	// ActivityDropped counts activity records discarded by the recorder
	// because its buffer was full.
	ActivityDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindwell_activity_dropped_total",
		Help: "The total number of activity records dropped by the recorder",
	})
)
