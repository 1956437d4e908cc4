// Package api defines the request and response types of the tutoring
// HTTP API.
//
// # API Overview
//
// The service exposes three endpoints:
//
//   - POST /session                 — create a tutoring session from a learner profile
//   - POST /session/{id}/interact   — run one learner turn (text, audio and/or image)
//   - GET  /health                  — liveness plus the live session count
//
// Session creation and interaction accept multipart/form-data. The
// interaction response is JSON carrying the tutor's text reply and its
// spoken rendering as base64-encoded MP3.
package api
