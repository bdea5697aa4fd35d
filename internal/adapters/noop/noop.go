// Package noop provides do-nothing adapters for optional dependencies.
package noop

import (
	"time"

	"github.com/goliatone/go-sections/pkg/interfaces"
)

// Metrics returns an interfaces.Metrics that drops every observation.
func Metrics() interfaces.Metrics {
	return metricsAdapter{}
}

type metricsAdapter struct{}

func (metricsAdapter) IncrementCatalogReload(string)                {}
func (metricsAdapter) IncrementValidationFailure(string)            {}
func (metricsAdapter) IncrementGuardRejection(string)               {}
func (metricsAdapter) ObserveDocumentBytes(int)                     {}
func (metricsAdapter) ObserveCommand(string, string, time.Duration) {}
