package pairing

import (
	"errors"
	"math/rand"

	"github.com/narunbabu/chess-sub009/models"
)

var ErrNoParticipants = errors.New("cannot allocate pairings with zero participants")

// Allocator produces board pairings for one round from a participant list.
type Allocator interface {
	Allocate(userIDs []int) ([]models.PairingSlot, error)

	GetName() string
}

// RandomAllocator shuffles and pairs consecutive entries, handing the
// leftover participant of an odd-sized field a bye. It makes no attempt to
// avoid rematches or balance colors: it renders a preview only, the
// authoritative pairing comes from the pairing backend.
type RandomAllocator struct {
	rng *rand.Rand
}

// NewRandomAllocator builds an allocator around the given source. A nil
// rng keeps input order, which the preview tests rely on.
func NewRandomAllocator(rng *rand.Rand) Allocator {
	return &RandomAllocator{rng: rng}
}

func (a *RandomAllocator) GetName() string {
	return "RandomPreview"
}

func (a *RandomAllocator) Allocate(userIDs []int) ([]models.PairingSlot, error) {
	n := len(userIDs)
	if n == 0 {
		return nil, ErrNoParticipants
	}

	shuffled := make([]int, n)
	copy(shuffled, userIDs)
	if a.rng != nil {
		a.rng.Shuffle(n, func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}

	slots := make([]models.PairingSlot, 0, (n+1)/2)
	board := 0
	for i := 0; i+1 < n; i += 2 {
		board++
		white, black := shuffled[i], shuffled[i+1]
		slots = append(slots, models.PairingSlot{
			Board:   board,
			WhiteID: &white,
			BlackID: &black,
		})
	}
	if n%2 == 1 {
		board++
		bye := shuffled[n-1]
		slots = append(slots, models.PairingSlot{
			Board:     board,
			IsBye:     true,
			ByeUserID: &bye,
		})
	}
	return slots, nil
}
