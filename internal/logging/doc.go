// Package logging provides structured logging for the Arena server.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the server. It provides both general logging
// functions and specialized functions for session and connection events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw input bytes, decode results)
//   - Info: Normal operations (connections, session lifecycle, state changes)
//   - Warn: Non-fatal issues (dropped flushes, email send failures)
//   - Error: Fatal issues (startup failures, transport errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Client connected",
//	    zap.String("remote_addr", "192.168.1.100"),
//	    zap.Uint64("client_id", 7),
//	)
//
// # Specialized Logging
//
// Connection and session helpers:
//
//	logging.LogConnection(remoteAddr, "connection_accepted")
//	logging.LogSession(clientID, "session_registered")
//	logging.LogSession(clientID, "session_closed")
//
// # Configuration
//
// Initialize logging at server startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI commands that should stay silent unless asked use InitializeFromEnv,
// which reads the ARENA_LOG_LEVEL environment variable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
