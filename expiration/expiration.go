// Package expiration defines how shared-tier entries expire over time.
package expiration

import (
	"time"

	"github.com/jvb127/faultserve/types"
)

/*
Strategy decides whether a shared-tier entry may still satisfy a load.
Expiration is about the entry's age, never about its content: an expired
entry can hold perfectly current data and a valid one can be behind the
origin. The loader treats expiry purely as "stop trusting, go look".
*/
type Strategy interface {

	// IsExpired reports whether the entry is too old to serve at instant
	// now.
	IsExpired(entry *types.CacheEntry, now time.Time) bool
}
