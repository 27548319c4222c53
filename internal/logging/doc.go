// Package logging provides structured logging utilities for calview.
//
// All packages log through log/slog. Setup installs the process-wide handler:
// a colorized tint handler for terminals or a JSON handler for log shippers.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithComponent(slog.Default(), "month_calendar")
//	logger.Info("loaded month",
//	    logging.Month("2025-02"),
//	    logging.Status(logging.StatusSuccess))
//
// Hash user ids before logging them:
//
//	logger.Info("sign-in check", logging.UserHash(userID))
//
// # Security Considerations
//
//   - User ids are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly, only their length
package logging
