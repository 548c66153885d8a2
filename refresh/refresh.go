/*
Package refresh keeps a long-lived process from serving the same resident
dataset forever.

The memory tier performs no freshness check of its own: once installed, a
dataset is trusted until process teardown. For most deployments that is the
right trade. For processes that live much longer than the data's refresh
cadence, a hook on the memory-tier read path can notice an old install and
kick off a background reload without ever blocking the reader.
*/
package refresh

import "time"

/*
Hook runs after every successful memory-tier read.

OnRead MUST be fast and non-blocking: it sits on the hottest path in the
system. Anything expensive it wants done has to happen on another goroutine.
*/
type Hook interface {
	OnRead(installedAt time.Time, now time.Time)
}
