// Package server manages the HTTP listener lifecycle: start, serve,
// graceful shutdown and signal handling.
// This package is internal and should not be imported by external projects.
package server
