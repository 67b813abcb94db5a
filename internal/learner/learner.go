// Package learner defines the capability contracts shared by every model
// in the toolkit. An ensemble is built against these interfaces only, so a
// hand-written heuristic, a trained classifier, or another ensemble can all
// be members interchangeably.
package learner

import (
	"errors"
	"fmt"
)

// Policy produces a discrete action for a fixed-length observation vector.
// Implementations must be safe for repeated calls and must not mutate state
// during Act; a policy admitted to an ensemble is read-only.
type Policy interface {
	// Act returns the chosen action index. When deterministic is true the
	// policy must always return the same action for the same observation.
	Act(obs []float64, deterministic bool) (int, error)

	// ObservationSize reports the observation width the policy expects.
	ObservationSize() int
}

// Classifier is a supervised learner over dense feature rows with integer
// class labels. Fit must be called before Predict.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)

	// Fitted reports whether Fit has completed successfully.
	Fitted() bool
}

// ErrEmptyEnsemble is returned when an ensemble is constructed or queried
// with no members.
var ErrEmptyEnsemble = errors.New("learner: ensemble has no members")

// ErrUnfitted is returned when prediction is requested before the required
// fit phases have completed.
var ErrUnfitted = errors.New("learner: model is not fitted")

// ShapeError reports an input whose width does not match what a model or
// ensemble expects. It is returned unwrapped so callers can use errors.As.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("learner: input width %d does not match expected %d", e.Got, e.Want)
}

// CheckWidth returns a ShapeError when got differs from want.
func CheckWidth(want, got int) error {
	if got != want {
		return &ShapeError{Want: want, Got: got}
	}
	return nil
}
