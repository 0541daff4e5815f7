package relay

import (
	"log/slog"
	"sync"
)

// DefaultQueueCapacity bounds pending uploads when no capacity is configured.
const DefaultQueueCapacity = 8

// Entry is a pending upload: a capture path plus its size at detection time.
type Entry struct {
	Path string
	Size int64
}

// UploadQueue is a fixed-capacity FIFO of pending uploads shared between the
// detector (producer) and the upload worker (consumer). Both operations are
// non-blocking: a full queue rejects the newest item rather than evicting or
// waiting, and an empty queue simply reports so. The lock is held only over
// the index updates, never across I/O.
type UploadQueue struct {
	mu    sync.Mutex
	buf   []Entry
	head  int
	tail  int
	count int
}

// NewUploadQueue creates a queue with the given fixed capacity.
// Capacities below 1 fall back to DefaultQueueCapacity.
func NewUploadQueue(capacity int) *UploadQueue {
	if capacity < 1 {
		capacity = DefaultQueueCapacity
	}
	return &UploadQueue{buf: make([]Entry, capacity)}
}

// Enqueue appends e at the tail. Returns false, discarding e, when the
// queue is full — a normal condition the caller handles, not an error.
func (q *UploadQueue) Enqueue(e Entry) bool {
	q.mu.Lock()
	if q.count == len(q.buf) {
		q.mu.Unlock()
		if logEnabled(slog.LevelDebug) {
			sub("queue").Debug("enqueue rejected, full", "path", e.Path)
		}
		return false
	}
	q.buf[q.tail] = e
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
	n := q.count
	q.mu.Unlock()

	if logEnabled(slog.LevelDebug) {
		sub("queue").Debug("enqueue", "path", e.Path, "queueLen", n)
	}
	return true
}

// Dequeue removes and returns the head entry. The returned entry is a
// private copy; the queue retains no reference to it.
func (q *UploadQueue) Dequeue() (Entry, bool) {
	q.mu.Lock()
	if q.count == 0 {
		q.mu.Unlock()
		return Entry{}, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = Entry{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	n := q.count
	q.mu.Unlock()

	if logEnabled(slog.LevelDebug) {
		sub("queue").Debug("dequeue", "path", e.Path, "queueLen", n)
	}
	return e, true
}

// Size returns a point-in-time snapshot of the number of queued entries.
func (q *UploadQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the fixed capacity the queue was built with.
func (q *UploadQueue) Capacity() int {
	return len(q.buf)
}
