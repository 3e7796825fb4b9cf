package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var (
	ErrQueueFull    = errors.New("sale event queue is full")
	ErrQueueStopped = errors.New("sale event queue is stopped")
)

var _ ports.SaleEventPublisher = (*Dispatcher)(nil)

// Dispatcher routes sale events to a fixed set of workers using consistent
// hashing on the sale number, guaranteeing per-sale event ordering. Workers
// hand the events to the downstream publisher off the request path.
type Dispatcher struct {
	workers []chan domain.SaleEvent
	next    ports.SaleEventPublisher
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.SaleEventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SaleEvent, numWorkers),
		next:    next,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SaleEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is handed to the publisher; the
// workers themselves run until Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues ev on the worker responsible for its sale number. It
// never blocks: a full shard yields ErrQueueFull.
func (d *Dispatcher) Publish(_ context.Context, ev domain.SaleEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrQueueStopped
	}

	idx := d.shardIndex(ev.SaleNumber)
	select {
	case d.workers[idx] <- ev:
		metrics.SaleEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.SaleEventsPublishedTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// Stop closes the queues and waits until every buffered event has been
// handed to the publisher or ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a sale number deterministically to a worker index.
func (d *Dispatcher) shardIndex(saleNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(saleNumber))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SaleEvent) {
	defer d.wg.Done()
	depth := metrics.SaleEventsQueueDepth.WithLabelValues(strconv.Itoa(id))

	for ev := range ch {
		depth.Set(float64(len(ch)))
		if err := d.next.Publish(context.WithoutCancel(ctx), ev); err != nil {
			metrics.SaleEventsPublishedTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Str("sale_number", ev.SaleNumber).
				Str("event_type", string(ev.Type)).
				Int("worker_id", id).
				Msg("sale event publishing failed")
			continue
		}
		metrics.SaleEventsPublishedTotal.WithLabelValues("ok").Inc()
	}
}
