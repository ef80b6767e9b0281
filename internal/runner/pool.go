package runner

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrShutdownTimeout is returned when workers outlive the grace period.
var ErrShutdownTimeout = errors.New("worker pool did not stop within grace period")

// Task runs on a pool worker with that worker's context and generator.
type Task func(ctx context.Context, rng *rand.Rand)

// Pool is a fixed set of workers. Each worker owns its random generator.
type Pool struct {
	size  int
	tasks chan Task
	wg    sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

func NewPool(size int, seed uint64) *Pool {
	if size < 1 {
		size = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		size:   size,
		tasks:  make(chan Task),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i, newRand(seed, i))
	}

	return p
}

func (p *Pool) worker(id int, rng *rand.Rand) {
	defer p.wg.Done()
	for task := range p.tasks {
		task(p.ctx, rng)
	}
}

func (p *Pool) Size() int {
	return p.size
}

// RunBatch submits n tasks and blocks until every one of them returned.
// With n <= Size() all tasks of the batch run at the same time.
func (p *Pool) RunBatch(n int, task Task) {
	var batch sync.WaitGroup
	batch.Add(n)

	for i := 0; i < n; i++ {
		p.tasks <- func(ctx context.Context, rng *rand.Rand) {
			defer batch.Done()
			task(ctx, rng)
		}
	}

	batch.Wait()
}

// Shutdown stops accepting tasks and waits up to grace for workers to
// finish. After that the pool context is cancelled, aborting in-flight work.
func (p *Pool) Shutdown(grace time.Duration) error {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-timer.C:
		p.cancel()
		<-done
		return ErrShutdownTimeout
	}
}
