package scheduler

import (
	"context"
	"sync"

	"voxelstream/internal/generator"
	"voxelstream/internal/voxel"
)

// genPool runs chunk generation jobs on a small fixed goroutine pool,
// mirroring meshing.WorkerPool's shape (buffered job channel, buffered
// result channel, non-blocking submit, context-cancelled shutdown) so
// the scheduler's two job kinds behave identically from the control
// thread's point of view.
type genPool struct {
	jobs    chan genJob
	results chan genResult
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	config  generator.Config
	sampler generator.HeightSampler
}

func newGenPool(workers, queueSize int, config generator.Config, sampler generator.HeightSampler) *genPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &genPool{
		jobs:    make(chan genJob, queueSize),
		results: make(chan genResult, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		config:  config,
		sampler: sampler,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *genPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			buf := voxel.NewBuffer(job.chunkSize)
			generator.Generate(buf, job.coord, p.config, p.sampler, generator.FullRange(buf))

			select {
			case p.results <- genResult{coord: job.coord, epoch: job.epoch, buf: buf}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// submit enqueues a job, returning false if the queue is full.
func (p *genPool) submit(job genJob) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

func (p *genPool) shutdown() {
	p.cancel()
	p.wg.Wait()
}
