/*
Package memtier holds the process-resident parsed dataset: the fastest tier,
valid for the remainder of the process's life.

Reads are lock-free. The resident value is replaced wholesale behind an
atomic pointer, so a reader either sees the previous complete dataset or the
new complete dataset, never a partially constructed one.
*/
package memtier

import (
	"sync/atomic"
	"time"

	"github.com/jvb127/faultserve/types"
)

// resident pairs the dataset with the instant it was installed, which the
// max-residency refresh hook compares against.
type resident struct {
	ds          *types.Dataset
	installedAt time.Time
}

// Tier is the memory tier. The zero value is not usable; call New.
type Tier struct {
	cur atomic.Pointer[resident]
}

// New creates an empty tier.
func New() *Tier {
	return &Tier{}
}

// Get returns the resident dataset and its install time, or ok=false when
// the tier is empty.
func (t *Tier) Get() (ds *types.Dataset, installedAt time.Time, ok bool) {
	r := t.cur.Load()
	if r == nil {
		return nil, time.Time{}, false
	}
	return r.ds, r.installedAt, true
}

/*
Install swaps ds in as the resident dataset, unless a dataset with a newer
source timestamp is already resident. That keeps visibility monotonic even
when a slow fetch finishes after a background refresh already installed
fresher data.

Returns whether ds became resident.
*/
func (t *Tier) Install(ds *types.Dataset, now time.Time) bool {
	next := &resident{ds: ds, installedAt: now}
	for {
		cur := t.cur.Load()
		if cur != nil && ds.SourceTime.Before(cur.ds.SourceTime) {
			return false
		}
		if t.cur.CompareAndSwap(cur, next) {
			return true
		}
	}
}
