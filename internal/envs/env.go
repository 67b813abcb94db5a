// Package envs provides episodic environments for policy evaluation.
// Environments follow the usual reset/step loop: Reset starts a fresh
// episode and returns the initial observation, Step applies one action and
// reports the next observation, the reward earned, and whether the episode
// ended.
package envs

// Env is a discrete-action episodic environment.
type Env interface {
	// Reset starts a new episode and returns the initial observation.
	Reset() []float64

	// Step applies the action and advances the environment one tick.
	// Calling Step after an episode ended is an error.
	Step(action int) (obs []float64, reward float64, done bool, err error)

	// ObservationSize reports the width of observation vectors.
	ObservationSize() int

	// ActionCount reports the number of discrete actions.
	ActionCount() int
}
