package persistence

import (
	"time"

	"github.com/rs/zerolog/log"

	"voxelstream/internal/hostio"
)

// writeJob is one atomic-replace write request.
type writeJob struct {
	path string
	data []byte
	kind string
}

// writer is a single-goroutine async writer. spec.md requires exactly one
// writer thread per store so two writes to the same path can never race;
// SnapshotStore and DeltaStore each own one.
type writer struct {
	fs     hostio.Filesystem
	queue  chan writeJob
	stopCh chan struct{}
	done   chan struct{}
}

func newWriter(fs hostio.Filesystem, queueCap int) *writer {
	w := &writer{
		fs:     fs,
		queue:  make(chan writeJob, queueCap),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.process(job)
		case <-w.stopCh:
			return
		}
	}
}

func (w *writer) process(job writeJob) {
	start := time.Now()
	err := w.fs.WriteFileAtomic(job.path, job.data)
	writeLatencySeconds.WithLabelValues(job.kind).Observe(time.Since(start).Seconds())
	if err != nil {
		writesFailed.WithLabelValues(job.kind).Inc()
		log.Error().Err(err).Str("path", job.path).Str("kind", job.kind).
			Msg("persistence: atomic write failed")
	}
}

// enqueue offers job without blocking. Returns false if the queue is full.
func (w *writer) enqueue(job writeJob) bool {
	select {
	case w.queue <- job:
		return true
	default:
		return false
	}
}

// close stops the writer. If drain is true, jobs already buffered in the
// queue are processed first (bounded by timeout); otherwise the writer
// exits as soon as it notices, discarding whatever is still queued.
func (w *writer) close(drain bool, timeout time.Duration) {
	if drain {
		close(w.queue)
	} else {
		close(w.stopCh)
	}
	select {
	case <-w.done:
	case <-time.After(timeout):
		log.Warn().Msg("persistence: writer shutdown timed out")
	}
}
