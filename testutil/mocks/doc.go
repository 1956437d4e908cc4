// Package mocks holds builder-style test doubles for the external
// services the dialogue pipeline depends on.
package mocks
