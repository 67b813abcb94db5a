package model

import (
	"fmt"
	"sort"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// Stump is a depth-1 decision tree: one feature, one threshold, one label
// per side. Fit scans every candidate split and keeps the one with the
// lowest training error. Deliberately weak; that is the point of a base
// learner in an ensemble.
type Stump struct {
	Feature    int     `json:"feature"`
	Threshold  float64 `json:"threshold"`
	LeftLabel  int     `json:"leftLabel"`  // value < threshold
	RightLabel int     `json:"rightLabel"` // value >= threshold
	Width      int     `json:"width"`
	IsFitted   bool    `json:"fitted"`
}

var _ learner.Classifier = (*Stump)(nil)

func NewStump() *Stump { return &Stump{} }

func (m *Stump) Fitted() bool { return m.IsFitted }

// Fit picks the (feature, threshold) split minimizing misclassified rows,
// trying the midpoints between consecutive distinct feature values.
func (m *Stump) Fit(X [][]float64, y []int) error {
	n, d, err := checkTrainingSet(X, y)
	if err != nil {
		return fmt.Errorf("stump: %w", err)
	}

	bestErr := n + 1
	for f := 0; f < d; f++ {
		values := make([]float64, n)
		for i, row := range X {
			values[i] = row[f]
		}
		sort.Float64s(values)

		for i := 1; i < n; i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2
			left, right := majorityBySide(X, y, f, threshold)
			errs := 0
			for r, row := range X {
				pred := right
				if row[f] < threshold {
					pred = left
				}
				if pred != y[r] {
					errs++
				}
			}
			if errs < bestErr {
				bestErr = errs
				m.Feature, m.Threshold = f, threshold
				m.LeftLabel, m.RightLabel = left, right
			}
		}
	}

	if bestErr > n {
		// All features constant: predict the overall majority label.
		m.Feature, m.Threshold = 0, X[0][0]
		maj := majorityLabel(y)
		m.LeftLabel, m.RightLabel = maj, maj
	}
	m.Width = d
	m.IsFitted = true
	return nil
}

func (m *Stump) Predict(X [][]float64) ([]int, error) {
	if !m.IsFitted {
		return nil, learner.ErrUnfitted
	}
	out := make([]int, len(X))
	for i, row := range X {
		if err := learner.CheckWidth(m.Width, len(row)); err != nil {
			return nil, fmt.Errorf("stump: row %d: %w", i, err)
		}
		if row[m.Feature] < m.Threshold {
			out[i] = m.LeftLabel
		} else {
			out[i] = m.RightLabel
		}
	}
	return out, nil
}

// majorityBySide returns the majority label on each side of the split.
func majorityBySide(X [][]float64, y []int, feature int, threshold float64) (left, right int) {
	var leftLabels, rightLabels []int
	for i, row := range X {
		if row[feature] < threshold {
			leftLabels = append(leftLabels, y[i])
		} else {
			rightLabels = append(rightLabels, y[i])
		}
	}
	return majorityLabel(leftLabels), majorityLabel(rightLabels)
}

// majorityLabel returns the most common label; ties resolve to the smaller
// label, matching the voting ensemble's tie-break.
func majorityLabel(labels []int) int {
	counts := make(map[int]int, 4)
	for _, l := range labels {
		counts[l]++
	}
	best, bestCount := 0, -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}
