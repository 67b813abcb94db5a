// Package ensemble implements majority-vote aggregation over decision
// policies, score-threshold membership selection, and the episode-based
// evaluation protocol shared by single policies and ensembles.
package ensemble

import (
	"fmt"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// Tracker receives prediction telemetry. All methods must be cheap; a nil
// Tracker disables collection. metrics.Wrapper satisfies this interface so
// the package does not import prometheus directly.
type Tracker interface {
	VotePredictionsInc()
	VoteTiesInc()
	MemberErrorsInc()
}

// Voting aggregates the decisions of a fixed, ordered set of policies by
// majority vote. Membership is frozen at construction; members are never
// mutated. A Voting ensemble is itself a learner.Policy, so it can stand in
// anywhere a single policy is expected, including inside another ensemble.
type Voting struct {
	members []learner.Policy
	obsSize int
	tracker Tracker
}

var _ learner.Policy = (*Voting)(nil)

// NewVoting builds a voting ensemble from already-trained policies. It
// fails with learner.ErrEmptyEnsemble when members is empty and with a
// learner.ShapeError when the members disagree on observation width.
// tracker may be nil.
func NewVoting(members []learner.Policy, tracker Tracker) (*Voting, error) {
	if len(members) == 0 {
		return nil, learner.ErrEmptyEnsemble
	}
	obsSize := members[0].ObservationSize()
	for i, m := range members[1:] {
		if err := learner.CheckWidth(obsSize, m.ObservationSize()); err != nil {
			return nil, fmt.Errorf("member %d: %w", i+1, err)
		}
	}

	fixed := make([]learner.Policy, len(members))
	copy(fixed, members)
	return &Voting{members: fixed, obsSize: obsSize, tracker: tracker}, nil
}

// Size reports the number of members.
func (v *Voting) Size() int { return len(v.members) }

func (v *Voting) ObservationSize() int { return v.obsSize }

// Act queries every member for its decision and returns the most common
// one. Ties between modal values resolve to the numerically smallest value;
// this mirrors the behavior of statistical mode over the member votes and
// is part of the contract, not an accident. A member failure aborts the
// call and surfaces unchanged.
func (v *Voting) Act(obs []float64, deterministic bool) (int, error) {
	if len(v.members) == 0 {
		return 0, learner.ErrEmptyEnsemble
	}
	if err := learner.CheckWidth(v.obsSize, len(obs)); err != nil {
		return 0, err
	}

	counts := make(map[int]int, len(v.members))
	for i, m := range v.members {
		action, err := m.Act(obs, deterministic)
		if err != nil {
			if v.tracker != nil {
				v.tracker.MemberErrorsInc()
			}
			return 0, fmt.Errorf("member %d: %w", i, err)
		}
		counts[action]++
	}

	winner, tie := modalMin(counts)
	if v.tracker != nil {
		v.tracker.VotePredictionsInc()
		if tie {
			v.tracker.VoteTiesInc()
		}
	}
	return winner, nil
}

// modalMin returns the smallest value among those with the highest count,
// and whether more than one value shared that count.
func modalMin(counts map[int]int) (int, bool) {
	winner := 0
	bestCount := -1
	modal := 0
	for value, count := range counts {
		switch {
		case count > bestCount:
			winner, bestCount, modal = value, count, 1
		case count == bestCount:
			modal++
			if value < winner {
				winner = value
			}
		}
	}
	return winner, modal > 1
}
