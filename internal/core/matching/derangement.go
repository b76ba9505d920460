package matching

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	ErrTooFewParticipants = errors.New("at least 2 participants are needed for a derangement")
	ErrDuplicateID        = errors.New("participant ids must be unique")
)

// Generator draws random derangements: giver to receiver assignments in which
// nobody is their own receiver.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng. A nil rng gets a
// randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// NewSeededRand returns a deterministic source for reproducible runs.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5eca5a17a))
}

// Derangement shuffles a copy of ids into receivers and pairs them with the
// unshuffled givers, retrying until no giver draws themself. About e
// attempts are needed on average regardless of the number of participants.
func (g *Generator) Derangement(ids []string) (map[string]string, error) {
	if len(ids) < 2 {
		return nil, ErrTooFewParticipants
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}

	receivers := append([]string(nil), ids...)
	for {
		g.rng.Shuffle(len(receivers), func(i, j int) {
			receivers[i], receivers[j] = receivers[j], receivers[i]
		})
		if !hasFixedPoint(ids, receivers) {
			break
		}
	}

	pairings := make(map[string]string, len(ids))
	for i, giver := range ids {
		pairings[giver] = receivers[i]
	}
	return pairings, nil
}

func hasFixedPoint(givers, receivers []string) bool {
	for i := range givers {
		if givers[i] == receivers[i] {
			return true
		}
	}
	return false
}
