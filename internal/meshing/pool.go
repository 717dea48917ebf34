package meshing

import (
	"context"
	"sync"

	"voxelstream/internal/voxel"
)

// Job is one mesh job's inputs. Buf and every populated Neighbors slot
// must already be deep copies the caller owns exclusively (invariant I3):
// a worker goroutine never touches live chunk state.
type Job struct {
	Coord            voxel.Coord
	Buf              *voxel.Buffer
	Neighbors        [6]*voxel.Buffer
	LodStep          int32
	MaxMaterialIndex voxel.MaterialID
	FallbackMaterial voxel.MaterialID
	// Epoch is carried through unchanged so the scheduler can drop a
	// completed result whose epoch no longer matches the chunk's current one.
	Epoch      uint64
	ResultChan chan Result
}

// Result is what a completed mesh job reports back.
type Result struct {
	Coord voxel.Coord
	Epoch uint64
	Mesh  MeshData
}

// WorkerPool runs mesh jobs on a small fixed goroutine pool, fed by a
// bounded channel so SubmitJob never blocks the scheduler's frame tick.
type WorkerPool struct {
	jobQueue chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool starts a pool of `workers` goroutines backed by a queue of
// capacity queueSize.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		jobQueue: make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// SubmitJob enqueues job without blocking. Returns false if the queue is
// full, in which case the job is not queued; the scheduler logs and drops
// it without retrying.
func (p *WorkerPool) SubmitJob(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			md := Mesh(job.Buf, job.Neighbors, job.LodStep, job.MaxMaterialIndex, job.FallbackMaterial)
			result := Result{Coord: job.Coord, Epoch: job.Epoch, Mesh: md}
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown cancels in-flight work and waits for every worker to exit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// QueueLength reports how many jobs are currently buffered.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
