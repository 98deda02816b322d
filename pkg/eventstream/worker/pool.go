// Package worker provides an asynchronous worker pool that publishes sync
// events through a wrapped eventstream.Publisher.
//
// The pool decouples broker writes from the sync path: PublishSync only
// enqueues, and background workers deliver events to the wrapped publisher.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream"
)

var (
	defaultNumWorkers     uint = 2
	defaultJobQueueSize   uint = 64
	defaultPublishTimeout      = 10 * time.Second
)

var (
	// ErrQueueFull is returned when an event is dropped because the queue is at capacity.
	ErrQueueFull = errors.New("event queue full")

	// ErrPoolClosed is returned for events published after Close.
	ErrPoolClosed = errors.New("event pool closed")
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher receives the queued events.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// PublishTimeout bounds each delivery to Publisher (defaults to 10s).
	PublishTimeout time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool is an eventstream.Publisher that delivers events asynchronously.
type Pool struct {
	config Config
	queue  chan *eventstream.SyncCompletedEvent
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("worker pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.SyncCompletedEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// PublishSync enqueues event for delivery. It never blocks: a full queue
// drops the event and returns ErrQueueFull.
func (p *Pool) PublishSync(_ context.Context, event *eventstream.SyncCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSyncEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- event:
		p.logger.Debug("sync event queued", zap.String("event_id", event.EventID))
		return nil
	default:
		p.logger.Error("sync event not queued, queue full, event dropped",
			zap.String("event_id", event.EventID),
		)
		return ErrQueueFull
	}
}

// Close stops accepting events, waits for queued events to drain and then
// closes the wrapped publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", zap.Uint("worker_id", id))

	for event := range p.queue {
		p.deliver(event)
	}

	p.logger.Debug("event worker stopped", zap.Uint("worker_id", id))
}

// deliver publishes one event. Failures are logged and not retried.
func (p *Pool) deliver(event *eventstream.SyncCompletedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.PublishSync(ctx, event); err != nil {
		p.logger.Warn("sync event delivery failed",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("sync event delivered",
		zap.String("event_id", event.EventID),
		zap.Int("synchronized_nodes", event.Summary.SynchronizedNodes),
	)
}
