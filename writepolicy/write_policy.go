/*
Package writepolicy decides how a freshly fetched dataset propagates into
the shared cache tier.

Write-back is advisory. A failed or dropped write never fails the load that
produced the dataset; the worst outcome is that some other process pays for
its own origin fetch later.
*/
package writepolicy

import "github.com/jvb127/faultserve/types"

// Policy is the contract between the loader and the shared-tier writer.
type Policy interface {

	// Write offers an entry for the shared tier. Whether and when it lands
	// is the policy's business.
	Write(key string, entry *types.CacheEntry)

	// Close flushes anything pending and stops background work.
	Close()
}
