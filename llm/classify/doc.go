// Package classify provides typed text-classification clients. The tutoring
// pipeline uses two instances: a toxicity classifier for the moderation gate
// and an emotion classifier for affect tagging.
package classify
