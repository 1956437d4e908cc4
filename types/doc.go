// Package types defines the shared error model used across the tutoring
// service: a structured Error carrying a stable code, an HTTP status hint,
// retryability, and the upstream provider that produced it.
package types
