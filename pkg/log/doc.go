// Package log provides the logging abstraction used by slship components.
//
// slship reports its own diagnostics (failed deliveries, dropped records,
// lifecycle transitions) through the Logger interface defined here. The
// library is silent by default; install a logger with slship.WithLogger.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Attach fields to every message from a component:
//
//	logger = log.With(logger, log.String("logstore", "app"))
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//
// Do not route a Logger back into the shipper that owns it: a failed
// delivery would report a record that can only be delivered the same way.
package log
