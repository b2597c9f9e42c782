package bot

import (
	"sync"

	"go.uber.org/zap"
)

// dispatcher runs jobs on a fixed set of workers. Jobs sharing a key land
// on the same worker, so they execute in submission order.
type dispatcher struct {
	queues []chan func()
	wg     sync.WaitGroup
	logger *zap.Logger
}

func newDispatcher(workers, queueSize int, logger *zap.Logger) *dispatcher {
	d := &dispatcher{
		queues: make([]chan func(), workers),
		logger: logger,
	}
	for i := range d.queues {
		q := make(chan func(), queueSize)
		d.queues[i] = q
		d.wg.Add(1)
		go d.work(q)
	}
	return d
}

func (d *dispatcher) submit(key int64, job func()) {
	d.queues[uint64(key)%uint64(len(d.queues))] <- job
}

// stop waits for every queued job to finish. submit must not be called afterwards.
func (d *dispatcher) stop() {
	for _, q := range d.queues {
		close(q)
	}
	d.wg.Wait()
}

func (d *dispatcher) work(q <-chan func()) {
	defer d.wg.Done()
	for job := range q {
		d.run(job)
	}
}

func (d *dispatcher) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Recovered from panic in update handler", zap.Any("panic", r))
		}
	}()
	job()
}
