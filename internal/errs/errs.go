// Package errs defines the error kinds the CLI distinguishes between:
// configuration errors are fatal, ingestion and network errors are
// recoverable per item. Wrap with %w and test with errors.Is.
package errs

import "errors"

var (
	// ErrConfiguration marks missing/invalid configuration: absent API key,
	// malformed URL-list JSON, missing index file at query time.
	ErrConfiguration = errors.New("configuration error")

	// ErrIngestion marks an unreadable or corrupt source document.
	ErrIngestion = errors.New("ingestion error")

	// ErrNetwork marks an unreachable URL, feed parse failure or remote
	// API failure.
	ErrNetwork = errors.New("network error")
)
