// Package logging provides structured logging for vecbridge on top of zap.
//
// Logger methods take a context and add correlation fields found in it:
// OpenTelemetry trace and span ids, the dataset and collection being worked
// on, and the HTTP request id.
//
//	ctx = logging.WithDatasetID(ctx, dataset.ID)
//	logger.Info(ctx, "dataset indexed", zap.Int("documents", len(docs)))
//
// Packages that take a *zap.Logger get one from Underlying.
//
// Logs go to standard error so command output on standard output stays
// machine readable. With telemetry enabled, entries are also bridged to the
// OpenTelemetry log pipeline through otelzap.
//
// The encoder masks configured sensitive keys and passwords embedded in URL
// values. Entries below error level are sampled; errors never are.
//
// Tests use NewTestLogger to capture entries.
package logging
