package ensemble

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// Candidate pairs a policy with its independently measured mean score.
type Candidate struct {
	Name   string
	Policy learner.Policy
	Score  float64
}

// SelectAbove keeps the candidates whose score meets or exceeds minScore,
// preserving order. The filter is applied once, before ensemble
// construction; it is idempotent by construction.
func SelectAbove(candidates []Candidate, minScore float64) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= minScore {
			kept = append(kept, c)
			continue
		}
		log.Info().
			Str("candidate", c.Name).
			Float64("score", c.Score).
			Float64("min", minScore).
			Msg("candidate below selection threshold, excluded")
	}
	return kept
}

// Policies extracts the policies from candidates in order.
func Policies(candidates []Candidate) []learner.Policy {
	out := make([]learner.Policy, len(candidates))
	for i, c := range candidates {
		out[i] = c.Policy
	}
	return out
}

// BuildFiltered filters candidates by minScore and constructs the voting
// ensemble from the survivors. It fails with learner.ErrEmptyEnsemble when
// no candidate passes.
func BuildFiltered(candidates []Candidate, minScore float64, tracker Tracker) (*Voting, error) {
	kept := SelectAbove(candidates, minScore)
	if len(kept) == 0 {
		return nil, fmt.Errorf("no candidate scored at least %.2f: %w", minScore, learner.ErrEmptyEnsemble)
	}
	return NewVoting(Policies(kept), tracker)
}
