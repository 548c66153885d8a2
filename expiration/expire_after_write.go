package expiration

import (
	"time"

	"github.com/jvb127/faultserve/types"
)

/*
ExpireAfterWrite is the shared tier's TTL rule: an entry is valid for a
fixed duration after the instant it was written, regardless of how often it
is read. The clock starts at CachedAt, not at the dataset's own timestamp.
*/
type ExpireAfterWrite struct {

	// TTL is how long an entry remains valid after being cached. A
	// non-positive TTL expires everything, which degrades the shared tier
	// to a pass-through.
	TTL time.Duration
}

// IsExpired reports whether the entry's age has reached the TTL.
func (e *ExpireAfterWrite) IsExpired(entry *types.CacheEntry, now time.Time) bool {
	return entry.Age(now) >= e.TTL
}
