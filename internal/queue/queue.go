package queue

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"propsearch/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler consumes one import batch.
type Handler func(*models.ImportBatch) error

// ImportQueue is an in-memory queue of import batches consumed by a fixed
// number of workers.
type ImportQueue struct {
	items    chan *models.ImportBatch
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	workers  sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewImportQueue creates a new import queue with the specified buffer size
func NewImportQueue(bufferSize int, logger *logrus.Logger) *ImportQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ImportQueue{
		items:    make(chan *models.ImportBatch, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]Handler, 0),
	}
}

// Push adds a batch without blocking. It fails with ErrQueueFull when the
// buffer has no room.
func (q *ImportQueue) Push(batch *models.ImportBatch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", batch.Size()).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// PushWait adds a batch, waiting for room until ctx is done. Workers must be
// running or the call only returns through ctx.
func (q *ImportQueue) PushWait(ctx context.Context, batch *models.ImportBatch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", batch.Size()).Debug("Pushed batch to queue")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe adds a handler function that will be called for each batch.
// Handlers must be registered before Start.
func (q *ImportQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches the given number of workers. Calling it more than once
// has no effect.
func (q *ImportQueue) Start(workers int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	if workers < 1 {
		workers = 1
	}
	handlers := append([]Handler(nil), q.handlers...)
	for i := 0; i < workers; i++ {
		q.workers.Add(1)
		go q.process(handlers)
	}
}

// process drains the queue until it is closed. Workers never take the
// queue lock, so a Close waiting on blocked producers cannot stall them.
func (q *ImportQueue) process(handlers []Handler) {
	defer q.workers.Done()
	for batch := range q.items {
		q.processBatch(handlers, batch)
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *ImportQueue) processBatch(handlers []Handler, batch *models.ImportBatch) {
	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("batch_size", batch.Size()).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches and waits until the workers have handled
// everything already queued.
func (q *ImportQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.workers.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *ImportQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *ImportQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
