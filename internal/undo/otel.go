package undo

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/trackedit/trackedit/internal/undo"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
