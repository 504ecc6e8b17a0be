// Package logging defines the structured logger the server components are
// written against, plus the default slog-backed implementation.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "listening", "addr", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key-value pairs on
	// every record.
	With(args ...any) Logger
}
