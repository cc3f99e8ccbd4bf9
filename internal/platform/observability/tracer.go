package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/agrotern2025/agrotern"

// Tracer returns the process tracer. Without a configured provider the global
// no-op implementation is used.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
