package jaeger

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// DefaultEndpoint is the collector used when none is configured.
const DefaultEndpoint = "http://jaeger:14268/api/traces"

// MustNewJaeger creates an exporter sending spans to the collector at endpoint.
func MustNewJaeger(endpoint string) *jaeger.Exporter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(endpoint),
	))
	if err != nil {
		panic(err)
	}

	return exp
}
