package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueOrder(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	for _, want := range []int{1, 2, 3} {
		got, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueuePushEvicts(t *testing.T) {
	rq := NewRingQueue[int](2)
	rq.Push(1)
	rq.Push(2)
	rq.Push(3)

	var seen []int
	rq.Each(func(v int) { seen = append(seen, v) })
	assert.Equal(t, []int{2, 3}, seen)
	assert.Equal(t, 2, rq.Len())
	assert.True(t, rq.IsFull())
}

func TestRingQueueZeroSize(t *testing.T) {
	rq := NewRingQueue[int](0)
	rq.Push(1)
	assert.True(t, rq.IsEmpty())
}
