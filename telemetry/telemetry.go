// Package telemetry provides setup for reporting spans and stats.
package telemetry

import (
	"time"

	"go.viam.com/utils/perf"
)

// SetupTelemetry starts a development exporter so traces and stats from the
// fusion pipeline can be reported.
func SetupTelemetry() (perf.Exporter, error) {
	exporter := perf.NewDevelopmentExporterWithOptions(perf.DevelopmentExporterOptions{
		ReportingInterval: time.Second,
	})
	if err := exporter.Start(); err != nil {
		return nil, err
	}

	return exporter, nil
}
