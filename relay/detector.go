package relay

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Detector is the driver loop: it polls the locator on a fixed interval,
// enqueues newly found captures and lazily (re)starts the upload worker.
// The watermark — the last capture accepted into the queue — lives only
// here, in process memory; the worker never touches it.
type Detector struct {
	fs           afero.Fs
	locator      *Locator
	queue        *UploadQueue
	destinations []Destination
	interval     time.Duration

	watermark  string
	kick       chan struct{}
	workerDone chan struct{}
}

// NewDetector creates the detector for the capture store rooted at root.
func NewDetector(fs afero.Fs, root string, queue *UploadQueue, destinations []Destination, interval time.Duration) *Detector {
	return &Detector{
		fs:           fs,
		locator:      NewLocator(fs, root),
		queue:        queue,
		destinations: destinations,
		interval:     interval,
		kick:         make(chan struct{}, 1),
	}
}

// Kick requests an immediate scan pass instead of waiting out the poll
// interval. Non-blocking; used by the filesystem watcher.
func (d *Detector) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. It never returns an error for expected
// conditions — an empty store, a full queue and failed deliveries are all
// recovered by the next pass.
func (d *Detector) Run(ctx context.Context) error {
	l := sub("detector")
	l.Info("starting",
		"interval", d.interval,
		"queueCapacity", d.queue.Capacity(),
		"destinations", lo.Map(d.destinations, func(dst Destination, _ int) string { return dst.Name() }))

	// Captures that predate startup are not relayed: the initial watermark
	// is the newest item already in the store, when there is one.
	if newest, err := d.locator.Newest(); err == nil {
		d.watermark = newest.Full()
		l.Info("current last item", "watermark", d.watermark)
	} else {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			l.Info("album not ready", "reason", nf.Error())
		} else {
			l.Warn("initial scan failed", "err", err)
		}
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		d.scan(ctx)

		select {
		case <-ctx.Done():
			d.joinWorker()
			l.Info("stopped")
			return nil
		case <-ticker.C:
		case <-d.kick:
		}
	}
}

// scan runs one detection pass: diff against the watermark, enqueue what is
// new, advance the watermark per accepted item and make sure a worker is
// draining the queue.
func (d *Detector) scan(ctx context.Context) {
	l := sub("detector")

	items, ok := d.newItems()
	if !ok {
		return
	}

	for _, item := range items {
		info, err := d.fs.Stat(item.Full())
		if err != nil || info.Size() <= 0 {
			// Zero-size or vanished entries are still being written; they
			// show up again with a size on a later pass.
			continue
		}

		if !d.queue.Enqueue(Entry{Path: item.Full(), Size: info.Size()}) {
			// The watermark must not advance past a dropped item, so the
			// rest of this pass is retried on the next poll.
			l.Error("queue full, deferring", "path", item.Full())
			break
		}

		l.Info("new capture", "path", item.Full(), "queueLen", d.queue.Size())
		d.watermark = item.Full()
	}

	d.maybeStartWorker(ctx)
}

// newItems returns the captures to consider this pass. Before the first
// successful observation the newest store item doubles as the first find.
func (d *Detector) newItems() ([]AlbumPath, bool) {
	l := sub("detector")

	if d.watermark == "" {
		newest, err := d.locator.Newest()
		if err != nil {
			return nil, false
		}
		return []AlbumPath{newest}, true
	}

	items, err := d.locator.NewerThan(d.watermark)
	if err != nil {
		l.Error("diff failed", "watermark", d.watermark, "err", err)
		return nil, false
	}
	return items, true
}

// maybeStartWorker spawns the upload worker when the queue has work and no
// worker is alive. The previous worker handle is always joined first, so at
// most one worker instance exists at any time.
func (d *Detector) maybeStartWorker(ctx context.Context) {
	if d.workerDone != nil {
		select {
		case <-d.workerDone:
			d.workerDone = nil
		default:
			return // still running
		}
	}

	if d.queue.Size() == 0 {
		return
	}

	done := make(chan struct{})
	d.workerDone = done
	worker := NewWorker(d.queue, d.fs, d.destinations)
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()
}

// joinWorker waits for an in-flight worker to finish draining.
func (d *Detector) joinWorker() {
	if d.workerDone != nil {
		<-d.workerDone
		d.workerDone = nil
	}
}
