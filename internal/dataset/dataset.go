// Package dataset provides the binary-classification datasets used by the
// stacking pipeline: a seeded synthetic generator, a CSV loader, a remote
// CSV fetcher, and a deterministic train/test split.
package dataset

import (
	"fmt"
	"math/rand"
)

// Dataset is a dense feature matrix with one integer label per row.
type Dataset struct {
	X [][]float64
	Y []int
}

// Len reports the number of rows.
func (d *Dataset) Len() int { return len(d.X) }

// Features reports the feature width, 0 for an empty set.
func (d *Dataset) Features() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Synthetic generates n rows of a two-cluster binary problem: class 0 is a
// Gaussian blob centered at -1 in every dimension, class 1 at +1, unit
// noise. The same seed always yields the same data.
func Synthetic(n, features int, seed int64) (*Dataset, error) {
	if n < 2 || features < 1 {
		return nil, fmt.Errorf("dataset: need at least 2 rows and 1 feature, got %d x %d", n, features)
	}

	rng := rand.New(rand.NewSource(seed))
	ds := &Dataset{
		X: make([][]float64, n),
		Y: make([]int, n),
	}
	for i := 0; i < n; i++ {
		label := i % 2
		center := -1.0
		if label == 1 {
			center = 1.0
		}
		row := make([]float64, features)
		for j := range row {
			row[j] = center + rng.NormFloat64()
		}
		ds.X[i] = row
		ds.Y[i] = label
	}
	return ds, nil
}

// Split shuffles the rows with the given seed and cuts off testRatio of
// them as the held-out test set. The test set is never seen by any fit.
func Split(ds *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("dataset: test ratio must be in (0, 1), got %g", testRatio)
	}
	n := ds.Len()
	testN := int(float64(n) * testRatio)
	if testN == 0 || testN == n {
		return nil, nil, fmt.Errorf("dataset: split of %d rows at ratio %g leaves an empty side", n, testRatio)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	train = &Dataset{}
	test = &Dataset{}
	for i, idx := range perm {
		if i < testN {
			test.X = append(test.X, ds.X[idx])
			test.Y = append(test.Y, ds.Y[idx])
		} else {
			train.X = append(train.X, ds.X[idx])
			train.Y = append(train.Y, ds.Y[idx])
		}
	}
	return train, test, nil
}

// Accuracy reports the fraction of predictions matching labels.
func Accuracy(preds, labels []int) (float64, error) {
	if len(preds) != len(labels) {
		return 0, fmt.Errorf("dataset: %d predictions for %d labels", len(preds), len(labels))
	}
	if len(preds) == 0 {
		return 0, fmt.Errorf("dataset: no predictions")
	}
	hits := 0
	for i, p := range preds {
		if p == labels[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(preds)), nil
}
