// Package logger sets up the JSON slog logger used across the application
// and carries request-scoped loggers through a context.
package logger
