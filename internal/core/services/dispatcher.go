package services

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
	"github.com/learnbox/learnbox-search/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driving.DocumentEvents = (*Dispatcher)(nil)

// taskKind names the lifecycle operation a task performs.
type taskKind string

const (
	taskVectorize   taskKind = "vectorize"
	taskRevectorize taskKind = "revectorize"
	taskDevectorize taskKind = "devectorize"
)

// lifecycleTask is one queued operation for a document.
type lifecycleTask struct {
	kind  taskKind
	key   string
	doc   domain.SourceDocument
	queue time.Time
}

// Dispatcher runs lifecycle events in the background. Tasks for the same
// document run one at a time in arrival order; different documents run
// concurrently on a fixed pool of workers. When the queue is full the
// oldest pending task is dropped.
type Dispatcher struct {
	vectorizer driving.VectorizationService
	timeout    time.Duration
	queueSize  int

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cond    *sync.Cond
	pending *list.List
	active  map[string]bool
	closed  bool
	dropped int

	wg sync.WaitGroup
}

// NewDispatcher starts cfg.Workers workers. Non-positive settings fall back
// to the defaults in domain.DefaultAppSettings.
func NewDispatcher(vectorizer driving.VectorizationService, cfg domain.VectorizationSettings) *Dispatcher {
	defaults := domain.DefaultAppSettings().Vectorization
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = defaults.TaskTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		vectorizer: vectorizer,
		timeout:    cfg.TaskTimeout,
		queueSize:  cfg.QueueSize,
		ctx:        ctx,
		cancel:     cancel,
		pending:    list.New(),
		active:     make(map[string]bool),
	}
	d.cond = sync.NewCond(&d.mu)

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// OnDocumentCreated schedules vectorization.
func (d *Dispatcher) OnDocumentCreated(doc domain.SourceDocument) error {
	return d.enqueue(taskVectorize, doc.ID, doc)
}

// OnDocumentContentChanged schedules revectorization.
func (d *Dispatcher) OnDocumentContentChanged(doc domain.SourceDocument) error {
	return d.enqueue(taskRevectorize, doc.ID, doc)
}

// OnDocumentDeleted schedules devectorization.
func (d *Dispatcher) OnDocumentDeleted(documentID string) error {
	return d.enqueue(taskDevectorize, documentID, domain.SourceDocument{ID: documentID})
}

// Pending returns the number of queued tasks not yet started.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending.Len()
}

// Dropped returns how many tasks were discarded because the queue was full.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops intake and waits for queued and running tasks. If ctx ends
// first, running tasks are cancelled, pending ones discarded, and ctx.Err()
// returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.mu.Lock()
		discarded := d.pending.Len()
		d.pending.Init()
		d.cond.Broadcast()
		d.mu.Unlock()
		d.cancel()
		logger.Warn("dispatcher: shutdown interrupted, discarded %d pending tasks", discarded)
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(kind taskKind, key string, doc domain.SourceDocument) error {
	if key == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrDispatcherClosed
	}

	for d.pending.Len() >= d.queueSize {
		oldest := d.pending.Remove(d.pending.Front()).(*lifecycleTask)
		d.dropped++
		logger.Warn("dispatcher: queue full, dropped %s %s queued at %s",
			oldest.kind, oldest.key, oldest.queue.Format(time.RFC3339))
	}

	d.pending.PushBack(&lifecycleTask{kind: kind, key: key, doc: doc, queue: time.Now()})
	d.cond.Signal()
	return nil
}

// next blocks until a task whose document is idle is available, or returns
// false once the dispatcher is closed and drained.
func (d *Dispatcher) next() (*lifecycleTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		// The first pending task of any idle key is always that key's oldest.
		for e := d.pending.Front(); e != nil; e = e.Next() {
			t := e.Value.(*lifecycleTask)
			if !d.active[t.key] {
				d.pending.Remove(e)
				d.active[t.key] = true
				return t, true
			}
		}
		if d.closed && d.pending.Len() == 0 {
			return nil, false
		}
		d.cond.Wait()
	}
}

func (d *Dispatcher) finish(key string) {
	d.mu.Lock()
	delete(d.active, key)
	d.cond.Broadcast()
	d.mu.Unlock()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		t, ok := d.next()
		if !ok {
			return
		}
		d.run(t)
		d.finish(t.key)
	}
}

// run executes one task. Failures and panics are logged, never propagated.
func (d *Dispatcher) run(t *lifecycleTask) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatcher: %s %s panicked: %v", t.kind, t.key, r)
		}
	}()

	started := time.Now()
	var (
		result *domain.VectorizeResult
		err    error
	)
	switch t.kind {
	case taskVectorize:
		result, err = d.vectorizer.Vectorize(ctx, t.doc)
	case taskRevectorize:
		result, err = d.vectorizer.Revectorize(ctx, t.doc)
	case taskDevectorize:
		result, err = d.vectorizer.Devectorize(ctx, t.key)
	}

	if err != nil {
		logger.Error("dispatcher: %s %s failed after %s: %v", t.kind, t.key, time.Since(started).Round(time.Millisecond), err)
		return
	}
	if result != nil && !result.Success {
		logger.Info("dispatcher: %s %s not indexed: %s", t.kind, t.key, result.Reason)
		return
	}
	logger.Debug("dispatcher: %s %s done in %s", t.kind, t.key, time.Since(started).Round(time.Millisecond))
}
