package writepolicy

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jvb127/faultserve/engine"
	"github.com/jvb127/faultserve/sharedcache"
	"github.com/jvb127/faultserve/types"
)

// flushTimeout bounds one shared-store round trip from the background
// worker.
const flushTimeout = 10 * time.Second

type writeReq struct {
	key   string
	entry *types.CacheEntry
}

/*
AsyncWriteBack ships entries to the shared tier from a background worker, so
the response that produced the dataset is never blocked on a cache write.

The worker re-reads the current entry immediately before putting and applies
the engine's monotonicity rule again. The loader already checked it, but the
entry can have been replaced by another process between the load's shared
read and the worker waking up; re-checking shrinks that race to the
get/put gap.

If the queue is full the write is dropped, not blocked on. Write-back is
advisory and the shared tier heals on the next miss.
*/
type AsyncWriteBack struct {
	store   sharedcache.Store
	engine  *engine.Engine
	logger  log.Logger
	metrics types.Metrics

	ch chan writeReq
	wg sync.WaitGroup
}

// NewAsyncWriteBack creates the policy and starts its worker. buffer is the
// number of pending writes held before drops begin.
func NewAsyncWriteBack(store sharedcache.Store, eng *engine.Engine, buffer int, logger log.Logger, metrics types.Metrics) *AsyncWriteBack {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	w := &AsyncWriteBack{
		store:   store,
		engine:  eng,
		logger:  logger,
		metrics: metrics,
		ch:      make(chan writeReq, buffer),
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

// Write queues the entry, dropping it when the buffer is full.
func (w *AsyncWriteBack) Write(key string, entry *types.CacheEntry) {
	select {
	case w.ch <- writeReq{key: key, entry: entry}:
	default:
		level.Warn(w.logger).Log("msg", "write-back queue full, dropping entry", "key", key)
		w.metrics.WriteBack(false)
	}
}

func (w *AsyncWriteBack) worker() {
	defer w.wg.Done()
	for req := range w.ch {
		flush(w.store, w.engine, w.logger, w.metrics, req.key, req.entry)
	}
}

// Close stops accepting writes and waits for queued ones to land.
func (w *AsyncWriteBack) Close() {
	close(w.ch)
	w.wg.Wait()
}

/*
SyncWriteBack performs the same guarded put inline. Deterministic, so tests
use it; it also suits batch tools where there is no response latency to
protect.
*/
type SyncWriteBack struct {
	Store   sharedcache.Store
	Engine  *engine.Engine
	Logger  log.Logger
	Metrics types.Metrics
}

func (w *SyncWriteBack) Write(key string, entry *types.CacheEntry) {
	logger := w.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	metrics := w.Metrics
	if metrics == nil {
		metrics = types.Metrics(types.NoopMetrics{})
	}
	flush(w.Store, w.Engine, logger, metrics, key, entry)
}

func (w *SyncWriteBack) Close() {}

// flush re-checks monotonicity against the live entry and puts. Errors are
// logged and swallowed: the shared tier is advisory.
func flush(store sharedcache.Store, eng *engine.Engine, logger log.Logger, metrics types.Metrics, key string, entry *types.CacheEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	prior, ok, err := store.Get(ctx, key)
	if err != nil {
		// Can't see the current entry; attempt the put anyway rather than
		// silently losing fresh data.
		level.Warn(logger).Log("msg", "write-back pre-read failed", "key", key, "err", err)
		prior, ok = nil, false
	}
	if ok && !eng.ShouldWriteBack(entry.DataTimestamp, prior) {
		return
	}

	if err := store.Put(ctx, key, entry); err != nil {
		level.Warn(logger).Log("msg", "write-back failed", "key", key, "err", err)
		metrics.WriteBack(false)
		return
	}
	metrics.WriteBack(true)
}
