package envs

import (
	"fmt"
	"math"
	"math/rand"
)

// Cart-pole physics constants, matching the classic control task.
const (
	gravity      = 9.8
	cartMass     = 1.0
	poleMass     = 0.1
	poleHalfLen  = 0.5
	forceMag     = 10.0
	tau          = 0.02 // seconds per tick
	angleLimit   = 12 * math.Pi / 180
	trackLimit   = 2.4
	cartPoleObs  = 4
	cartPoleActs = 2
)

// CartPole is the pole-balancing control task. The agent pushes a cart left
// or right to keep a hinged pole upright; the episode ends when the pole
// falls past the angle limit, the cart leaves the track, or the step cap is
// reached. Reward is 1 per surviving tick.
type CartPole struct {
	rng      *rand.Rand
	state    [4]float64 // x, xDot, theta, thetaDot
	steps    int
	maxSteps int
	done     bool
	started  bool
}

// NewCartPole creates a cart-pole environment with its own seeded RNG so
// evaluation runs are reproducible. maxSteps caps the episode length; values
// below 1 fall back to 500.
func NewCartPole(seed int64, maxSteps int) *CartPole {
	if maxSteps < 1 {
		maxSteps = 500
	}
	return &CartPole{
		rng:      rand.New(rand.NewSource(seed)),
		maxSteps: maxSteps,
	}
}

func (c *CartPole) ObservationSize() int { return cartPoleObs }
func (c *CartPole) ActionCount() int     { return cartPoleActs }

// Reset starts a new episode with all state components drawn uniformly from
// [-0.05, 0.05].
func (c *CartPole) Reset() []float64 {
	for i := range c.state {
		c.state[i] = c.rng.Float64()*0.1 - 0.05
	}
	c.steps = 0
	c.done = false
	c.started = true
	return c.observe()
}

// Step applies one push and integrates the dynamics for a single tick.
func (c *CartPole) Step(action int) ([]float64, float64, bool, error) {
	if !c.started {
		return nil, 0, false, fmt.Errorf("cartpole: Step before Reset")
	}
	if c.done {
		return nil, 0, true, fmt.Errorf("cartpole: Step after episode end")
	}
	if action < 0 || action >= cartPoleActs {
		return nil, 0, false, fmt.Errorf("cartpole: invalid action %d", action)
	}

	force := forceMag
	if action == 0 {
		force = -forceMag
	}

	x, xDot, theta, thetaDot := c.state[0], c.state[1], c.state[2], c.state[3]
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	totalMass := cartMass + poleMass
	poleMassLen := poleMass * poleHalfLen

	temp := (force + poleMassLen*thetaDot*thetaDot*sinT) / totalMass
	thetaAcc := (gravity*sinT - cosT*temp) /
		(poleHalfLen * (4.0/3.0 - poleMass*cosT*cosT/totalMass))
	xAcc := temp - poleMassLen*thetaAcc*cosT/totalMass

	// Euler integration
	c.state[0] = x + tau*xDot
	c.state[1] = xDot + tau*xAcc
	c.state[2] = theta + tau*thetaDot
	c.state[3] = thetaDot + tau*thetaAcc

	c.steps++
	failed := c.state[0] < -trackLimit || c.state[0] > trackLimit ||
		c.state[2] < -angleLimit || c.state[2] > angleLimit
	c.done = failed || c.steps >= c.maxSteps

	return c.observe(), 1.0, c.done, nil
}

func (c *CartPole) observe() []float64 {
	obs := make([]float64, cartPoleObs)
	copy(obs, c.state[:])
	return obs
}
