package api

import (
	"context"

	"github.com/jvb127/faultserve/types"
)

/*
Loader is the PUBLIC contract of the tiered data loader. Everything behind it
(tier ordering, TTL arbitration, single-flight coordination, write-back,
monotonic installs) is hidden from callers.

BEHAVIOR:
---------
 1. If the process already holds a parsed dataset, it is returned
    immediately with provenance MEMORY.
 2. Otherwise the shared cache tier is consulted; a within-TTL entry is
    parsed and returned with provenance SHARED_VALID.
 3. Otherwise the origin is fetched, decoded and validated; provenance is
    MISS or SHARED_EXPIRED depending on whether an aged-out entry existed.

Concurrent callers never trigger duplicate origin fetches within a process:
they all wait for, and receive, the result of the single in-flight load.

Load fails only when no dataset can be produced at all, and then always with
a *types.LoadError (OriginUnavailable or Malformed). A failed load mutates
no tier; the next call retries from scratch.
*/
type Loader interface {
	Load(ctx context.Context) (*types.Dataset, types.Provenance, error)
}

/*
EntityStore resolves a single pre-split record directly against the origin,
bypassing the tiered loader entirely. Records are small enough that a direct
fetch sits near the noise floor, so there is no caching tier and therefore
no staleness to reason about.

A missing record yields types.ErrNotFound, not a failure.
*/
type EntityStore interface {

	// Get fetches the record for (entityType, entityID), deriving the
	// sanitized composite key.
	Get(ctx context.Context, entityType, entityID string) (types.EntityRecord, error)

	// GetByKey fetches a record by its already-composed key, as received
	// in API requests.
	GetByKey(ctx context.Context, key string) (types.EntityRecord, error)
}
