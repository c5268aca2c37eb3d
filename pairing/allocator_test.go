package pairing

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narunbabu/chess-sub009/models"
)

func TestAllocateEvenField(t *testing.T) {
	a := NewRandomAllocator(nil)

	slots, err := a.Allocate([]int{10, 20, 30, 40})
	require.NoError(t, err)
	require.Len(t, slots, 2)

	for i, slot := range slots {
		assert.Equal(t, i+1, slot.Board)
		assert.False(t, slot.IsBye)
		require.NotNil(t, slot.WhiteID)
		require.NotNil(t, slot.BlackID)
	}
	assert.Equal(t, 10, *slots[0].WhiteID)
	assert.Equal(t, 20, *slots[0].BlackID)
	assert.Equal(t, 30, *slots[1].WhiteID)
	assert.Equal(t, 40, *slots[1].BlackID)
}

func TestAllocateOddFieldGetsOneBye(t *testing.T) {
	a := NewRandomAllocator(nil)

	slots, err := a.Allocate([]int{10, 20, 30, 40, 50})
	require.NoError(t, err)
	require.Len(t, slots, 3)

	byes := 0
	for _, slot := range slots {
		if slot.IsBye {
			byes++
			require.NotNil(t, slot.ByeUserID)
			assert.Nil(t, slot.WhiteID)
			assert.Nil(t, slot.BlackID)
		}
	}
	assert.Equal(t, 1, byes)
	assert.True(t, slots[len(slots)-1].IsBye, "the unpaired participant sits on the last board")
}

func TestAllocateSingleParticipant(t *testing.T) {
	a := NewRandomAllocator(nil)

	slots, err := a.Allocate([]int{10})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].IsBye)
	assert.Equal(t, 10, *slots[0].ByeUserID)
}

func TestAllocateEmptyField(t *testing.T) {
	a := NewRandomAllocator(nil)

	_, err := a.Allocate(nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestAllocateEveryoneSeatedExactlyOnce(t *testing.T) {
	a := NewRandomAllocator(rand.New(rand.NewSource(1)))
	ids := []int{1, 2, 3, 4, 5, 6, 7}

	slots, err := a.Allocate(ids)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	seen := make(map[int]int)
	for _, slot := range slots {
		if slot.IsBye {
			seen[*slot.ByeUserID]++
			continue
		}
		seen[*slot.WhiteID]++
		seen[*slot.BlackID]++
	}
	assert.Len(t, seen, len(ids))
	for id, count := range seen {
		assert.Equal(t, 1, count, "user %d seated %d times", id, count)
	}
}

func TestAllocateShufflesWithRng(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5, 6, 7, 8}

	seating := func(slots []models.PairingSlot) []int {
		var out []int
		for _, s := range slots {
			if s.IsBye {
				out = append(out, *s.ByeUserID)
				continue
			}
			out = append(out, *s.WhiteID, *s.BlackID)
		}
		return out
	}

	shuffled := false
	for seed := int64(0); seed < 20 && !shuffled; seed++ {
		a := NewRandomAllocator(rand.New(rand.NewSource(seed)))
		slots, err := a.Allocate(ids)
		require.NoError(t, err)
		if !reflect.DeepEqual(seating(slots), ids) {
			shuffled = true
		}
	}
	assert.True(t, shuffled, "a seeded source must not always pair in roster order")
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	a := NewRandomAllocator(rand.New(rand.NewSource(42)))
	ids := []int{1, 2, 3, 4}

	_, err := a.Allocate(ids)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}
