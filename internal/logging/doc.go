// Package logging builds slog loggers with console and JSON handlers and
// provides standardized attribute and context helpers for the pipeline.
package logging
