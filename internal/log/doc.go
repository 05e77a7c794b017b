// Package log provides the application's slog setup with automatic masking
// of credentials.
//
// The SecureHandler wraps any slog.Handler and, before a record is written:
//   - masks attributes whose key names a credential (api_key, authorization, dsn)
//   - replaces OpenAI style keys (sk-...) embedded in strings and errors
//   - masks bearer tokens, JWTs and URLs with inline passwords
//   - truncates long string values such as prompts and oracle replies
//
// Masking applies in verbose mode too, so debug logs can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("oracle request", "authorization", "Bearer sk-...") // masked
//	slog.SetDefault(logger)
package log
