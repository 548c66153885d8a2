package engine

import (
	"time"

	"github.com/jvb127/faultserve/expiration"
	"github.com/jvb127/faultserve/types"
)

/*
Engine is the freshness policy layer. It decides, it does not do: no I/O, no
state, no locking. The loader asks it three questions and acts on the
answers:

  - May this shared-tier entry still satisfy a load? (TTL arbitration)
  - May this freshly fetched dataset overwrite the shared tier?
    (monotonicity: the tier must never regress to an older data timestamp)
  - What provenance does an origin fetch carry? (MISS vs SHARED_EXPIRED)
*/
type Engine struct {

	// Expiration is the TTL rule for shared-tier entries. If nil, entries
	// never expire by age.
	Expiration expiration.Strategy
}

// New creates an Engine with the given expiration strategy.
func New(exp expiration.Strategy) *Engine {
	return &Engine{Expiration: exp}
}

// IsExpired reports whether a shared-tier entry is past its TTL.
func (e *Engine) IsExpired(entry *types.CacheEntry, now time.Time) bool {
	return e.Expiration != nil && e.Expiration.IsExpired(entry, now)
}

/*
ShouldWriteBack reports whether a dataset with the given source timestamp
may be written over the prior shared-tier entry.

The rule is strict: write when no entry exists, or when the new timestamp is
strictly newer. A stale writer racing a fresh one therefore loses even when
schedules interleave badly, and equal-timestamp rewrites are skipped as
pointless churn.
*/
func (e *Engine) ShouldWriteBack(sourceTime time.Time, prior *types.CacheEntry) bool {
	return prior == nil || sourceTime.After(prior.DataTimestamp)
}

// RefetchProvenance classifies an origin fetch by whether an aged-out
// shared entry was present when the load began.
func (e *Engine) RefetchProvenance(hadEntry bool) types.Provenance {
	if hadEntry {
		return types.ProvenanceSharedExpired
	}
	return types.ProvenanceMiss
}
