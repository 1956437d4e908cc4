package classify

import "context"

// LabelScore is one classifier label with its confidence.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TextClassifier classifies a text input into scored labels, most confident
// first.
type TextClassifier interface {
	Classify(ctx context.Context, text string) ([]LabelScore, error)
	Name() string
}

// Top returns the highest-confidence label, or "" for an empty result.
func Top(scores []LabelScore) string {
	if len(scores) == 0 {
		return ""
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best.Label
}

// ScoreFor returns the score of the named label and whether it was present.
func ScoreFor(scores []LabelScore, label string) (float64, bool) {
	for _, s := range scores {
		if s.Label == label {
			return s.Score, true
		}
	}
	return 0, false
}
