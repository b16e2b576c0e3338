package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_AppendWithinCapacity(t *testing.T) {
	r := NewRing[int](3)

	assert.Equal(t, 0, r.Len())
	_, ok := r.Last()
	assert.False(t, ok)

	r.Append(1)
	r.Append(2)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []int{1, 2}, r.Items())

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 2, last)
}

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
	assert.Equal(t, []int{3, 4, 5}, r.Items())

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 5, last)
}

func TestRing_Tail(t *testing.T) {
	r := NewRing[int](4)
	for i := 1; i <= 6; i++ {
		r.Append(i)
	}

	assert.Equal(t, []int{5, 6}, r.Tail(2))
	// asking for more than retained returns everything
	assert.Equal(t, []int{3, 4, 5, 6}, r.Tail(10))
	assert.Nil(t, r.Tail(0))
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := NewRing[string](0)
	r.Append("a")
	r.Append("b")

	assert.Equal(t, 1, r.Cap())
	assert.Equal(t, []string{"b"}, r.Items())
}
