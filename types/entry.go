package types

import (
	"encoding/json"
	"time"
)

/*
CacheEntry is what the shared cache tier stores: the serialized dataset plus
the two timestamps the freshness rules need.

CachedAt and DataTimestamp are deliberately independent. CachedAt is the
wall-clock instant of the write and drives TTL expiry. DataTimestamp is the
dataset's own SourceTime at the moment it was cached and drives the
monotonicity check. An entry can be TTL-expired while still carrying the
newest data the origin has ever produced.
*/
type CacheEntry struct {

	// Payload is the uncompressed serialized dataset document.
	// json.RawMessage keeps it embedded verbatim when the entry itself is
	// serialized, rather than base64-encoded.
	Payload json.RawMessage `json:"payload"`

	// CachedAt is when this entry was written. Used for TTL expiry only.
	CachedAt time.Time `json:"cached_at"`

	// DataTimestamp equals the Dataset's SourceTime at the time it was
	// cached. Used for the monotonicity check only.
	DataTimestamp time.Time `json:"data_timestamp"`
}

// Age returns how long ago the entry was cached.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}
