package vision

import (
	"context"
	"errors"
)

// ErrScoringUnavailable reports that the scorer could not produce a
// score at all: transport failure, timeout, or an unusable response.
// Callers route the submission to manual review instead of guessing.
var ErrScoringUnavailable = errors.New("scoring_unavailable")

// Scorer compares a candidate image against a reference image and
// returns a similarity in [0, 1].
type Scorer interface {
	Score(ctx context.Context, reference, candidate []byte) (float64, error)
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
