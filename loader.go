/*
Package faultserve serves a periodically refreshed fault entity dataset
through three tiers: a process-resident parsed copy, a durable shared cache
of the serialized document, and the authoritative compressed origin blob.

The TieredLoader in this package is the orchestrator that connects:
  - the memory tier (fastest, trusted for the process lifetime)
  - the shared cache tier (TTL-arbitrated serialized snapshots)
  - the origin store (fetch + decompress + parse, the expensive path)
  - the freshness engine, write-back policy and refresh hook
*/
package faultserve

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/singleflight"

	"github.com/jvb127/faultserve/decode"
	"github.com/jvb127/faultserve/engine"
	"github.com/jvb127/faultserve/memtier"
	"github.com/jvb127/faultserve/origin"
	"github.com/jvb127/faultserve/refresh"
	"github.com/jvb127/faultserve/sharedcache"
	"github.com/jvb127/faultserve/types"
	"github.com/jvb127/faultserve/writepolicy"
)

// DatasetCacheKey is the shared-tier key the consolidated dataset lives
// under. There is exactly one logical entry per tier.
const DatasetCacheKey = "dataset"

// LoaderConfig wires a TieredLoader's collaborators together.
type LoaderConfig struct {

	// Origin is the authoritative blob store.
	Origin origin.Store

	// DatasetPath is the origin path of the compressed consolidated
	// dataset.
	DatasetPath string

	// Shared is the shared cache tier store.
	Shared sharedcache.Store

	// Engine holds the freshness policy (TTL, monotonicity, provenance).
	Engine *engine.Engine

	// WriteBack propagates fresh datasets into the shared tier. Optional;
	// nil disables write-back entirely.
	WriteBack writepolicy.Policy

	// FetchTimeout bounds the origin fetch + decode. Zero means the
	// caller's context is the only bound.
	FetchTimeout time.Duration

	// MaxResidency, when positive, triggers a background refresh once the
	// resident dataset has been installed longer than this. Zero keeps the
	// source behavior: memory is trusted until process teardown.
	MaxResidency time.Duration
}

// Validate checks that the required collaborators are present.
func (c *LoaderConfig) Validate() error {
	if c.Origin == nil {
		return fmt.Errorf("origin store cannot be nil")
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("dataset path cannot be empty")
	}
	if c.Shared == nil {
		return fmt.Errorf("shared cache store cannot be nil")
	}
	if c.Engine == nil {
		return fmt.Errorf("freshness engine cannot be nil")
	}
	return nil
}

/*
TieredLoader owns the cached dataset's lifecycle.

Its single correctness job beyond tier ordering is coordination: any number
of concurrent callers that miss the memory tier share ONE in-flight load.
The single-flight group guards "is a load in progress", not the decode work
per caller; once a dataset is installed, readers go through the lock-free
memory tier without touching the group at all.
*/
type TieredLoader struct {
	origin       origin.Store
	datasetPath  string
	shared       sharedcache.Store
	mem          *memtier.Tier
	engine       *engine.Engine
	writeback    writepolicy.Policy
	refreshHook  refresh.Hook
	fetchTimeout time.Duration

	logger  log.Logger
	metrics types.Metrics

	sf singleflight.Group
}

// NewTieredLoader creates a loader. metrics and logger may be nil.
func NewTieredLoader(cfg *LoaderConfig, metrics types.Metrics, logger log.Logger) (*TieredLoader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loader config: %w", err)
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	l := &TieredLoader{
		origin:       cfg.Origin,
		datasetPath:  cfg.DatasetPath,
		shared:       cfg.Shared,
		mem:          memtier.New(),
		engine:       cfg.Engine,
		writeback:    cfg.WriteBack,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger,
		metrics:      metrics,
	}
	if cfg.MaxResidency > 0 {
		l.refreshHook = refresh.NewMaxResidency(cfg.MaxResidency, l.backgroundRefresh, metrics)
	}
	return l, nil
}

// loadResult is what one single-flight load produces for all its waiters.
type loadResult struct {
	ds   *types.Dataset
	prov types.Provenance
}

/*
Load returns the parsed dataset and the tier that answered.

Failure modes are exactly two, both as *types.LoadError: the origin was
unreachable (OriginUnavailable) or its blob was malformed (Malformed). A
failed load leaves every tier untouched and is never cached; the next call
starts over.
*/
func (l *TieredLoader) Load(ctx context.Context) (*types.Dataset, types.Provenance, error) {
	// Fast path: resident dataset, no freshness check, no locks.
	if ds, installedAt, ok := l.mem.Get(); ok {
		l.metrics.Load(types.ProvenanceMemory)
		if l.refreshHook != nil {
			l.refreshHook.OnRead(installedAt, time.Now())
		}
		return ds, types.ProvenanceMemory, nil
	}

	v, err, _ := l.sf.Do(DatasetCacheKey, func() (any, error) {
		return l.loadTiers(ctx)
	})
	if err != nil {
		l.metrics.LoadFailure(types.LoadErrorKindOf(err))
		return nil, "", err
	}

	res := v.(*loadResult)
	l.metrics.Load(res.prov)
	return res.ds, res.prov, nil
}

/*
loadTiers runs the slow path: shared tier, then origin. Exactly one
invocation is in flight per process at any moment.

Shared-tier trouble (store error, corrupt payload) degrades to a miss and
is logged; only the origin itself can fail the load.
*/
func (l *TieredLoader) loadTiers(ctx context.Context) (*loadResult, error) {
	now := time.Now()

	entry, hadEntry, err := l.shared.Get(ctx, DatasetCacheKey)
	if err != nil {
		level.Warn(l.logger).Log("msg", "shared cache read failed, treating as miss", "err", err)
		entry, hadEntry = nil, false
	}

	if hadEntry && !l.engine.IsExpired(entry, now) {
		ds, parseErr := types.ParseDataset(entry.Payload)
		if parseErr == nil {
			l.mem.Install(ds, time.Now())
			return &loadResult{ds: ds, prov: types.ProvenanceSharedValid}, nil
		}
		// A corrupt shared entry must not take the service down while the
		// origin still works.
		level.Warn(l.logger).Log("msg", "shared cache entry is corrupt, falling back to origin", "err", parseErr)
	}

	ds, err := l.fetchOrigin(ctx)
	if err != nil {
		return nil, err
	}
	prov := l.engine.RefetchProvenance(hadEntry)

	installedAt := time.Now()
	l.mem.Install(ds, installedAt)

	if l.writeback != nil && l.engine.ShouldWriteBack(ds.SourceTime, entry) {
		payload, marshalErr := json.Marshal(ds)
		if marshalErr != nil {
			level.Warn(l.logger).Log("msg", "serializing dataset for write-back failed", "err", marshalErr)
		} else {
			l.writeback.Write(DatasetCacheKey, &types.CacheEntry{
				Payload:       payload,
				CachedAt:      installedAt,
				DataTimestamp: ds.SourceTime,
			})
		}
	}

	return &loadResult{ds: ds, prov: prov}, nil
}

// fetchOrigin pulls and decodes the consolidated blob, classifying the two
// failure modes.
func (l *TieredLoader) fetchOrigin(ctx context.Context) (*types.Dataset, error) {
	if l.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.fetchTimeout)
		defer cancel()
	}

	rc, err := l.origin.Fetch(ctx, l.datasetPath)
	if err != nil {
		return nil, types.NewLoadError(types.OriginUnavailable, err)
	}

	ds, decodeErr := decode.Decode(rc)
	closeErr := rc.Close()
	if decodeErr != nil {
		return nil, types.NewLoadError(types.Malformed, decodeErr)
	}
	if closeErr != nil {
		level.Warn(l.logger).Log("msg", "closing origin stream failed", "err", closeErr)
	}
	return ds, nil
}

/*
backgroundRefresh is the max-residency trigger. It reloads through the
normal tier path (honoring the shared tier's TTL) and shares the
single-flight group, so a refresh and a cold-path load can never run
duplicate origin fetches. Installs stay monotonic; failures only log,
because the resident dataset keeps serving.
*/
func (l *TieredLoader) backgroundRefresh() {
	_, err, _ := l.sf.Do(DatasetCacheKey, func() (any, error) {
		return l.loadTiers(context.Background())
	})
	if err != nil {
		level.Warn(l.logger).Log("msg", "background refresh failed", "err", err)
	}
}

// Close flushes the write-back policy.
func (l *TieredLoader) Close() {
	if l.writeback != nil {
		l.writeback.Close()
	}
}
