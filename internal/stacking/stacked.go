// Package stacking implements stacked generalization: the predictions of a
// fixed set of base classifiers are column-stacked after the original
// features, and a second-stage meta-learner is trained on the augmented
// matrix to produce the final label.
package stacking

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// Tracker receives stacking telemetry; a nil Tracker disables collection.
type Tracker interface {
	MetaPredictionsInc()
	MetaFeatureRowsAdd(float64)
}

// Stacked combines a fixed ordered set of base classifiers with one
// meta-learner. The lifecycle is a strict state machine: FitBase, then
// FitMeta, then Predict. Member order is frozen at construction; the same
// order drives meta-feature construction at fit and inference time, which
// is what keeps the augmented columns aligned between the two phases.
type Stacked struct {
	bases   []learner.Classifier
	meta    learner.Classifier
	tracker Tracker

	featureWidth int
	baseFitted   bool
	metaFitted   bool
}

// NewStacked builds a stacked ensemble from unfitted base classifiers and a
// meta-learner. It fails with learner.ErrEmptyEnsemble when bases is empty.
// tracker may be nil.
func NewStacked(bases []learner.Classifier, meta learner.Classifier, tracker Tracker) (*Stacked, error) {
	if len(bases) == 0 {
		return nil, learner.ErrEmptyEnsemble
	}
	if meta == nil {
		return nil, fmt.Errorf("stacking: meta-learner is nil")
	}

	fixed := make([]learner.Classifier, len(bases))
	copy(fixed, bases)
	return &Stacked{bases: fixed, meta: meta, tracker: tracker}, nil
}

// Size reports the number of base learners.
func (s *Stacked) Size() int { return len(s.bases) }

// MetaWidth reports the width of meta-feature rows once the bases are fit:
// original feature count plus one prediction column per base learner.
func (s *Stacked) MetaWidth() int { return s.featureWidth + len(s.bases) }

// Fitted reports whether both fit phases have completed.
func (s *Stacked) Fitted() bool { return s.baseFitted && s.metaFitted }

// FitBase fits every base learner independently on the full training set.
func (s *Stacked) FitBase(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("stacking: empty training set")
	}
	for i, base := range s.bases {
		if err := base.Fit(X, y); err != nil {
			return fmt.Errorf("stacking: base learner %d: %w", i, err)
		}
	}
	s.featureWidth = len(X[0])
	s.baseFitted = true
	s.metaFitted = false
	return nil
}

// FitMeta builds the meta-feature matrix from the fitted bases and fits the
// meta-learner on it against the original labels. FitBase must have
// completed first.
func (s *Stacked) FitMeta(X [][]float64, y []int) error {
	if !s.baseFitted {
		return fmt.Errorf("stacking: FitMeta before FitBase: %w", learner.ErrUnfitted)
	}
	metaX, err := s.MetaFeatures(X)
	if err != nil {
		return err
	}
	if err := s.meta.Fit(metaX, y); err != nil {
		return fmt.Errorf("stacking: meta-learner: %w", err)
	}
	s.metaFitted = true
	return nil
}

// Fit runs both phases on the same training set.
func (s *Stacked) Fit(X [][]float64, y []int) error {
	if err := s.FitBase(X, y); err != nil {
		return err
	}
	return s.FitMeta(X, y)
}

// Predict maps each input row through the fitted ensemble. It fails with
// learner.ErrUnfitted until both fit phases have completed.
func (s *Stacked) Predict(X [][]float64) ([]int, error) {
	if !s.Fitted() {
		return nil, learner.ErrUnfitted
	}
	metaX, err := s.MetaFeatures(X)
	if err != nil {
		return nil, err
	}
	out, err := s.meta.Predict(metaX)
	if err != nil {
		return nil, fmt.Errorf("stacking: meta-learner: %w", err)
	}
	if s.tracker != nil {
		s.tracker.MetaPredictionsInc()
	}
	return out, nil
}

// MetaFeatures builds the augmented matrix [X | base₀(X) ... baseₖ(X)] with
// prediction columns in member order. Construction is deterministic for
// fixed base-learner states and inputs.
func (s *Stacked) MetaFeatures(X [][]float64) ([][]float64, error) {
	if !s.baseFitted {
		return nil, learner.ErrUnfitted
	}
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("stacking: no input rows")
	}
	for i, row := range X {
		if err := learner.CheckWidth(s.featureWidth, len(row)); err != nil {
			return nil, fmt.Errorf("stacking: row %d: %w", i, err)
		}
	}

	meta := mat.NewDense(n, s.MetaWidth(), nil)
	for i, row := range X {
		for j, v := range row {
			meta.Set(i, j, v)
		}
	}
	for b, base := range s.bases {
		preds, err := base.Predict(X)
		if err != nil {
			return nil, fmt.Errorf("stacking: base learner %d: %w", b, err)
		}
		if len(preds) != n {
			return nil, fmt.Errorf("stacking: base learner %d returned %d predictions for %d rows: %w",
				b, len(preds), n, &learner.ShapeError{Want: n, Got: len(preds)})
		}
		for i, p := range preds {
			meta.Set(i, s.featureWidth+b, float64(p))
		}
	}

	if s.tracker != nil {
		s.tracker.MetaFeatureRowsAdd(float64(n))
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = meta.RawRowView(i)
	}
	return out, nil
}
