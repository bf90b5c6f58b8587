package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/develevate/platform-api/internal/api/metrics"
)

const (
	defaultWorkers     = 4
	channelBuffer      = 256
	defaultTaskTimeout = 30 * time.Second
)

type task struct {
	key  string
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher runs best-effort side effects on a fixed set of workers. Tasks are
// sharded by key so work for one user runs in submission order.
// It implements ports.TaskRunner.
type Dispatcher struct {
	workers []chan task
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan task, numWorkers),
		timeout: defaultTaskTimeout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func(id int, ch <-chan task) {
			defer d.wg.Done()
			d.runWorker(ctx, id, ch)
		}(i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Go submits fn to the worker owning key. It never blocks: when the worker's
// buffer is full the task is dropped and logged.
func (d *Dispatcher) Go(key, name string, fn func(ctx context.Context) error) {
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- task{key: key, name: name, fn: fn}:
		metrics.TaskQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.TasksTotal.WithLabelValues(name, "dropped").Inc()
		d.log.Warn().
			Str("task", name).
			Str("key", key).
			Int("worker_id", idx).
			Msg("task queue full, dropping task")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan task) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			metrics.TaskQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.run(ctx, id, t)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, t task) {
	taskCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.TaskDuration.WithLabelValues(t.name).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			metrics.TasksTotal.WithLabelValues(t.name, "failed").Inc()
			d.log.Error().
				Interface("panic", r).
				Str("task", t.name).
				Str("key", t.key).
				Int("worker_id", id).
				Msg("task panicked")
		}
	}()

	if err := t.fn(taskCtx); err != nil {
		metrics.TasksTotal.WithLabelValues(t.name, "failed").Inc()
		d.log.Warn().Err(err).
			Str("task", t.name).
			Str("key", t.key).
			Int("worker_id", id).
			Msg("task failed")
		return
	}
	metrics.TasksTotal.WithLabelValues(t.name, "ok").Inc()
}
