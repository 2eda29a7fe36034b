// Package telemetry provides OpenTelemetry tracing and metrics for notionctl.
//
// Telemetry is disabled by default. When enabled it exports spans and
// metrics over OTLP (gRPC or HTTP/protobuf) to a collector:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc
//
// Failures while building providers never stop the CLI or servers. The
// instance degrades to the global no-op providers and reports it through
// Health.
//
// Tests use TestTelemetry, which records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	d := dispatch.New(reg, tt.Telemetry, logger)
//	...
//	tt.AssertSpanExists(t, "dispatch fetch")
package telemetry
