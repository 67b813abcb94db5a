package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// KNN is a k-nearest-neighbours classifier with Euclidean distance. Fit
// just memorizes the training set.
type KNN struct {
	K        int         `json:"k"`
	Rows     [][]float64 `json:"rows"`
	Labels   []int       `json:"labels"`
	IsFitted bool        `json:"fitted"`
}

var _ learner.Classifier = (*KNN)(nil)

// NewKNN creates a classifier voting over the k nearest rows. Non-positive
// k falls back to 5.
func NewKNN(k int) *KNN {
	if k < 1 {
		k = 5
	}
	return &KNN{K: k}
}

func (m *KNN) Fitted() bool { return m.IsFitted }

func (m *KNN) Fit(X [][]float64, y []int) error {
	_, d, err := checkTrainingSet(X, y)
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}

	m.Rows = make([][]float64, len(X))
	for i, row := range X {
		m.Rows[i] = make([]float64, d)
		copy(m.Rows[i], row)
	}
	m.Labels = make([]int, len(y))
	copy(m.Labels, y)
	m.IsFitted = true
	return nil
}

func (m *KNN) Predict(X [][]float64) ([]int, error) {
	if !m.IsFitted {
		return nil, learner.ErrUnfitted
	}
	out := make([]int, len(X))
	for i, row := range X {
		if err := learner.CheckWidth(len(m.Rows[0]), len(row)); err != nil {
			return nil, fmt.Errorf("knn: row %d: %w", i, err)
		}
		out[i] = m.vote(row)
	}
	return out, nil
}

type neighbour struct {
	dist  float64
	label int
}

func (m *KNN) vote(row []float64) int {
	neighbours := make([]neighbour, len(m.Rows))
	for i, train := range m.Rows {
		neighbours[i] = neighbour{dist: euclidean(row, train), label: m.Labels[i]}
	}
	sort.Slice(neighbours, func(a, b int) bool { return neighbours[a].dist < neighbours[b].dist })

	k := m.K
	if k > len(neighbours) {
		k = len(neighbours)
	}
	labels := make([]int, k)
	for i := 0; i < k; i++ {
		labels[i] = neighbours[i].label
	}
	return majorityLabel(labels)
}

func euclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
