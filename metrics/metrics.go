// Package metrics exposes the runtime's Prometheus instrumentation. All
// collectors register on the default registerer and cost nothing until
// scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TraitLookups counts trait table lookups by bind status.
	TraitLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "avm",
		Subsystem: "vm",
		Name:      "trait_lookups_total",
		Help:      "Trait table lookups by result status.",
	}, []string{"result"})

	// ClassClosures counts completed class closures.
	ClassClosures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "avm",
		Subsystem: "vm",
		Name:      "class_closures_total",
		Help:      "Classes closed since process start.",
	})

	// ClassClosureFailures counts closures that corrupted their class.
	ClassClosureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "avm",
		Subsystem: "vm",
		Name:      "class_closure_failures_total",
		Help:      "Class closures that failed and poisoned the class.",
	})

	// GlobalLookups counts application-domain global lookups by bind status.
	GlobalLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "avm",
		Subsystem: "vm",
		Name:      "global_lookups_total",
		Help:      "Application domain global trait lookups by result status.",
	}, []string{"result"})
)
