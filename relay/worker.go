package relay

import (
	"context"

	"github.com/spf13/afero"
)

// Worker is the single background upload task. It drains the queue until
// empty, fanning each entry out to every destination with per-type retry
// budgets, then exits. It never restarts itself; the detector spawns a
// fresh worker when new work arrives and none is running.
type Worker struct {
	queue        *UploadQueue
	fs           afero.Fs
	destinations []Destination
}

// NewWorker creates a worker over the given queue and destinations. The
// destination list is expected to hold only enabled destinations.
func NewWorker(queue *UploadQueue, fs afero.Fs, destinations []Destination) *Worker {
	return &Worker{queue: queue, fs: fs, destinations: destinations}
}

// Run processes queued entries until the queue reports empty or ctx is
// cancelled, then returns.
func (w *Worker) Run(ctx context.Context) {
	l := sub("worker")
	l.Info("started")

	for ctx.Err() == nil {
		entry, ok := w.queue.Dequeue()
		if !ok {
			break
		}
		w.process(ctx, entry)
	}

	l.Info("exiting")
}

func (w *Worker) process(ctx context.Context, e Entry) {
	l := sub("worker")
	attempts := MaxAttempts(e.Path)
	l.Info("uploading", "path", e.Path, "size", e.Size, "video", IsVideo(e.Path), "maxAttempts", attempts)

	// A capture that vanished or became unreadable between detection and
	// upload is abandoned outright; retrying cannot bring it back.
	f, err := w.fs.Open(e.Path)
	if err != nil {
		l.Error("source unreadable, dropping item", "path", e.Path, "err", err)
		return
	}
	f.Close()

	anySuccess := false
	for _, dest := range w.destinations {
		dl := sub(dest.Name())
		err := attemptWithBackoff(ctx, dl, attempts, func() error {
			return dest.Deliver(ctx, e.Path, e.Size)
		})
		if err != nil {
			dl.Error("upload failed after retries", "path", e.Path, "attempts", attempts, "err", err)
			continue
		}
		anySuccess = true
	}

	if !anySuccess {
		l.Error("all destinations failed", "path", e.Path)
	}
}
