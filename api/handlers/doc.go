/*
Package handlers implements the request handlers of the tutoring HTTP
API: session creation, per-turn interaction, health checks and the
shared response and error plumbing.

# Core types

  - SessionHandler  — POST /session and POST /session/{id}/interact
  - HealthHandler   — GET /health with the live session count
  - Response        — unified JSON envelope (success + data + error + timestamp)
  - ErrorInfo       — structured error info with code and retryable flag
  - ResponseWriter  — wraps http.ResponseWriter to capture the status code

All handlers follow the standard net/http interface. Errors flow through
WriteError, which maps the service's error codes to HTTP status codes.
*/
package handlers
