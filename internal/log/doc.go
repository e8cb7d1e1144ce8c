// Package log builds the application's slog logger.
//
// All output goes through RedactingHandler, which masks cookies,
// authorization headers and token-like values, including those inside a
// map[string]string of request headers. Even with --verbose these values
// never reach the terminal.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("request headers", "headers", cfg.File.RequestHeaders())
package log
