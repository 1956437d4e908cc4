// Package testutil provides shared helpers for tests across the project.
//
// The mocks subpackage holds builder-style fakes for every external
// dependency (chat model, classifiers, memory store, speech providers),
// all supporting canned responses, error injection and call recording.
package testutil
