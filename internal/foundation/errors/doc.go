// Package errors provides the classified error primitives used across sitekeeper.
//
// Every fatal condition the indexer and sitemap builder can hit is reported as a
// ClassifiedError so the CLI can pick an exit code and a log level without
// string matching:
//
//   - CategoryNotFound: a required input (posts directory, index file) is absent
//   - CategoryValidation: an input exists but cannot be used (empty directory, bad JSON)
//   - CategoryFileSystem: an output file could not be written
//   - CategoryConfig: the configuration file is unreadable or invalid
//
// Example usage:
//
//	err := errors.NotFoundError("index file not found").
//		WithContext("path", indexPath).
//		WithCause(statErr).
//		Build()
package errors
