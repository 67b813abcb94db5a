package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// MLPConfig holds the hyperparameters for the feed-forward network. They
// are passed explicitly at construction rather than read from package
// state.
type MLPConfig struct {
	Hidden       []int   `yaml:"hidden"`
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learningRate"`
	Seed         int64   `yaml:"seed"`
}

// MLP is a small fully connected network with ReLU hidden activations and a
// softmax cross-entropy output, trained by full-batch gradient descent: a
// fixed number of epochs at a fixed learning rate, every example in every
// gradient step, no mini-batching, no early stopping, no validation split.
//
// It serves as the neural meta-learner for stacking. Weight layout is
// Weights[layer][neuron][input]; fields are exported for JSON persistence.
type MLP struct {
	Config   MLPConfig     `json:"config"`
	Sizes    []int         `json:"sizes"` // input, hidden..., classes
	Weights  [][][]float64 `json:"weights"`
	Biases   [][]float64   `json:"biases"`
	Losses   []float64     `json:"losses"` // mean cross-entropy per epoch
	IsFitted bool          `json:"fitted"`
}

var _ learner.Classifier = (*MLP)(nil)

// NewMLP creates an unfitted network. Missing hidden sizes default to a
// single layer of 16 units; non-positive epochs or learning rate fall back
// to 100 and 0.05.
func NewMLP(cfg MLPConfig) *MLP {
	if len(cfg.Hidden) == 0 {
		cfg.Hidden = []int{16}
	}
	if cfg.Epochs < 1 {
		cfg.Epochs = 100
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.05
	}
	return &MLP{Config: cfg}
}

func (m *MLP) Fitted() bool { return m.IsFitted }

// Fit trains the network. The class count is taken from the largest label,
// with a minimum of two classes.
func (m *MLP) Fit(X [][]float64, y []int) error {
	n, d, err := checkTrainingSet(X, y)
	if err != nil {
		return fmt.Errorf("mlp: %w", err)
	}

	classes := 2
	for i, label := range y {
		if label < 0 {
			return fmt.Errorf("mlp: negative label %d at row %d", label, i)
		}
		if label+1 > classes {
			classes = label + 1
		}
	}

	m.Sizes = append(append([]int{d}, m.Config.Hidden...), classes)
	m.initParams()

	layers := len(m.Sizes) - 1
	m.Losses = make([]float64, 0, m.Config.Epochs)

	for epoch := 0; epoch < m.Config.Epochs; epoch++ {
		gradW, gradB := m.zeroGrads()
		loss := 0.0

		for i := 0; i < n; i++ {
			acts, pre := m.forward(X[i])
			probs := acts[layers]
			loss += -math.Log(math.Max(probs[y[i]], 1e-12))

			// Softmax + cross-entropy: output delta is probs - onehot(y).
			delta := make([]float64, classes)
			copy(delta, probs)
			delta[y[i]] -= 1

			for l := layers - 1; l >= 0; l-- {
				in := acts[l]
				for j := range delta {
					gradB[l][j] += delta[j]
					for k := range in {
						gradW[l][j][k] += delta[j] * in[k]
					}
				}
				if l == 0 {
					break
				}
				prev := make([]float64, m.Sizes[l])
				for k := range prev {
					s := 0.0
					for j := range delta {
						s += m.Weights[l][j][k] * delta[j]
					}
					if pre[l-1][k] <= 0 { // ReLU derivative
						s = 0
					}
					prev[k] = s
				}
				delta = prev
			}
		}

		scale := m.Config.LearningRate / float64(n)
		for l := 0; l < layers; l++ {
			for j := range m.Weights[l] {
				m.Biases[l][j] -= scale * gradB[l][j]
				for k := range m.Weights[l][j] {
					m.Weights[l][j][k] -= scale * gradW[l][j][k]
				}
			}
		}
		m.Losses = append(m.Losses, loss/float64(n))
	}

	m.IsFitted = true
	return nil
}

// Predict returns the argmax class per row.
func (m *MLP) Predict(X [][]float64) ([]int, error) {
	if !m.IsFitted {
		return nil, learner.ErrUnfitted
	}
	out := make([]int, len(X))
	for i, row := range X {
		if err := learner.CheckWidth(m.Sizes[0], len(row)); err != nil {
			return nil, fmt.Errorf("mlp: row %d: %w", i, err)
		}
		acts, _ := m.forward(row)
		probs := acts[len(m.Sizes)-1]
		best := 0
		for c, p := range probs {
			if p > probs[best] {
				best = c
			}
		}
		out[i] = best
	}
	return out, nil
}

// forward returns the activations per layer (input first, softmax output
// last) and the pre-activation values of the hidden layers.
func (m *MLP) forward(x []float64) (acts [][]float64, pre [][]float64) {
	layers := len(m.Sizes) - 1
	acts = make([][]float64, layers+1)
	pre = make([][]float64, layers)
	acts[0] = x

	for l := 0; l < layers; l++ {
		z := make([]float64, m.Sizes[l+1])
		for j := range z {
			s := m.Biases[l][j]
			for k, v := range acts[l] {
				s += m.Weights[l][j][k] * v
			}
			z[j] = s
		}
		pre[l] = z

		if l == layers-1 {
			acts[l+1] = softmaxRow(z)
			continue
		}
		a := make([]float64, len(z))
		for j, v := range z {
			if v > 0 {
				a[j] = v
			}
		}
		acts[l+1] = a
	}
	return acts, pre
}

// initParams applies seeded Xavier-style initialization.
func (m *MLP) initParams() {
	rng := rand.New(rand.NewSource(m.Config.Seed))
	layers := len(m.Sizes) - 1
	m.Weights = make([][][]float64, layers)
	m.Biases = make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := m.Sizes[l], m.Sizes[l+1]
		m.Weights[l] = make([][]float64, out)
		m.Biases[l] = make([]float64, out)
		std := math.Sqrt(2.0 / float64(in))
		for j := 0; j < out; j++ {
			m.Weights[l][j] = make([]float64, in)
			for k := 0; k < in; k++ {
				m.Weights[l][j][k] = rng.NormFloat64() * std
			}
		}
	}
}

func (m *MLP) zeroGrads() ([][][]float64, [][]float64) {
	layers := len(m.Sizes) - 1
	gw := make([][][]float64, layers)
	gb := make([][]float64, layers)
	for l := 0; l < layers; l++ {
		gw[l] = make([][]float64, m.Sizes[l+1])
		gb[l] = make([]float64, m.Sizes[l+1])
		for j := range gw[l] {
			gw[l][j] = make([]float64, m.Sizes[l])
		}
	}
	return gw, gb
}

func softmaxRow(z []float64) []float64 {
	max := z[0]
	for _, v := range z[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
