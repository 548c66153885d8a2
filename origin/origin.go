/*
Package origin abstracts the authoritative blob store: the consolidated
compressed dataset and the pre-split per-entity files, addressable by path.

The origin is shared across processes and accessed without any distributed
locking; callers own all freshness and coordination concerns.
*/
package origin

import (
	"context"
	"io"
)

// Store returns a byte stream for the blob at path.
//
// A missing blob yields an error satisfying errors.Is(err, types.ErrNotFound).
// Any other error means the origin could not be reached; callers classify
// that as OriginUnavailable.
type Store interface {
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)
}
