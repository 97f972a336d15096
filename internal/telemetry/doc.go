// Package telemetry sets up OpenTelemetry tracing and metrics export for
// vecbridge.
//
// Spans and metrics go to an OTLP collector over gRPC or HTTP/protobuf.
// Telemetry is off by default; when the exporters cannot be created the
// instance reports itself degraded and the otel globals stay no-op, so the
// vector store keeps working.
//
//	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Tests use NewTestTelemetry, which records spans in memory.
package telemetry
