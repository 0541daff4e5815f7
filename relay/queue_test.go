package relay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadQueue_Bound(t *testing.T) {
	const capacity = 4
	q := NewUploadQueue(capacity)

	for i := 0; i < capacity; i++ {
		require.True(t, q.Enqueue(Entry{Path: fmt.Sprintf("/album/%d.jpg", i), Size: 1}))
	}
	assert.Equal(t, capacity, q.Size())

	// Full queue rejects the newest entry; nothing is evicted.
	assert.False(t, q.Enqueue(Entry{Path: "/album/overflow.jpg", Size: 1}))
	assert.Equal(t, capacity, q.Size())

	for i := 0; i < capacity; i++ {
		_, ok := q.Dequeue()
		require.True(t, ok)
	}
	assert.Equal(t, 0, q.Size())

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestUploadQueue_FIFO(t *testing.T) {
	q := NewUploadQueue(8)

	q.Enqueue(Entry{Path: "a", Size: 1})
	q.Enqueue(Entry{Path: "b", Size: 2})
	q.Enqueue(Entry{Path: "c", Size: 3})

	for _, want := range []string{"a", "b", "c"} {
		e, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, e.Path)
	}
}

func TestUploadQueue_WrapAround(t *testing.T) {
	q := NewUploadQueue(2)

	require.True(t, q.Enqueue(Entry{Path: "a"}))
	require.True(t, q.Enqueue(Entry{Path: "b"}))

	e, _ := q.Dequeue()
	assert.Equal(t, "a", e.Path)

	require.True(t, q.Enqueue(Entry{Path: "c"}))

	e, _ = q.Dequeue()
	assert.Equal(t, "b", e.Path)
	e, _ = q.Dequeue()
	assert.Equal(t, "c", e.Path)

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestUploadQueue_DefaultCapacity(t *testing.T) {
	q := NewUploadQueue(0)
	assert.Equal(t, DefaultQueueCapacity, q.Capacity())
}
