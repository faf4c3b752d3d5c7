// Package metrics provides Prometheus metrics for loadmon pipeline runs.
//
// Collectors live on a custom registry so a batch run can persist exactly
// its own series with WriteTextfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the "loadmon" metric prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "pipeline" subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithStageBuckets sets the stage duration buckets, in milliseconds.
func WithStageBuckets(ms ...float64) Option {
	return func(m *Manager) {
		if len(ms) > 0 {
			m.stageBuckets = ms
		}
	}
}

// WithRegistry registers the collectors on r instead of the default registerer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
