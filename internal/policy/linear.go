// Package policy provides the reference control policies used by the voting
// ensemble pipeline: a linear softmax policy over raw observations and a
// seeded random-search trainer for it. This is demonstration scaffolding,
// not a general RL framework.
package policy

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// Linear scores each action as a linear function of the observation and
// turns the scores into a softmax distribution. Deterministic mode takes
// the argmax; stochastic mode samples from the distribution.
//
// Fields are exported for JSON persistence.
type Linear struct {
	Weights [][]float64 `json:"weights"` // [action][feature]
	Biases  []float64   `json:"biases"`  // [action]

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLinear creates a zero-weight policy for the given observation width and
// action count, with its own seeded RNG for stochastic action sampling.
func NewLinear(obsSize, actions int, seed int64) *Linear {
	w := make([][]float64, actions)
	for a := range w {
		w[a] = make([]float64, obsSize)
	}
	return &Linear{
		Weights: w,
		Biases:  make([]float64, actions),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (p *Linear) ObservationSize() int { return len(p.Weights[0]) }

// Act implements learner.Policy.
func (p *Linear) Act(obs []float64, deterministic bool) (int, error) {
	if err := learner.CheckWidth(p.ObservationSize(), len(obs)); err != nil {
		return 0, err
	}

	scores := make([]float64, len(p.Weights))
	for a, row := range p.Weights {
		s := p.Biases[a]
		for i, v := range obs {
			s += row[i] * v
		}
		scores[a] = s
	}

	if deterministic {
		return argmax(scores), nil
	}
	return p.sample(softmax(scores)), nil
}

// ensureRNG creates the RNG when missing. Policies restored from a JSON
// snapshot arrive without one. Caller must hold mu.
func (p *Linear) ensureRNG() {
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// Clone returns a deep copy sharing no state with the receiver. The clone
// gets its own RNG seeded from the original's stream.
func (p *Linear) Clone() *Linear {
	p.mu.Lock()
	p.ensureRNG()
	seed := p.rng.Int63()
	p.mu.Unlock()

	c := NewLinear(p.ObservationSize(), len(p.Weights), seed)
	for a := range p.Weights {
		copy(c.Weights[a], p.Weights[a])
	}
	copy(c.Biases, p.Biases)
	return c
}

func (p *Linear) sample(probs []float64) int {
	p.mu.Lock()
	p.ensureRNG()
	r := p.rng.Float64()
	p.mu.Unlock()

	acc := 0.0
	for a, pr := range probs {
		acc += pr
		if r < acc {
			return a
		}
	}
	return len(probs) - 1
}

func argmax(scores []float64) int {
	best := 0
	for a, s := range scores {
		if s > scores[best] {
			best = a
		}
	}
	return best
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	probs := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
