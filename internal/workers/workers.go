package workers

import "context"

// Workers runs a fixed set of background loops as a unit.
type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers. Order matters: Start launches
// them first to last, Stop tears them down in reverse.
func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Start implements [Worker] over the whole set.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop implements [Worker] over the whole set.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
