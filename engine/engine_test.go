package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jvb127/faultserve/expiration"
	"github.com/jvb127/faultserve/types"
)

func TestIsExpired(t *testing.T) {
	now := time.Now()
	eng := New(&expiration.ExpireAfterWrite{TTL: time.Minute})

	fresh := &types.CacheEntry{CachedAt: now.Add(-30 * time.Second)}
	require.False(t, eng.IsExpired(fresh, now))

	stale := &types.CacheEntry{CachedAt: now.Add(-2 * time.Minute)}
	require.True(t, eng.IsExpired(stale, now))

	// Age exactly at the TTL boundary counts as expired.
	boundary := &types.CacheEntry{CachedAt: now.Add(-time.Minute)}
	require.True(t, eng.IsExpired(boundary, now))
}

func TestIsExpiredWithoutStrategy(t *testing.T) {
	eng := New(nil)
	ancient := &types.CacheEntry{CachedAt: time.Now().Add(-24 * 365 * time.Hour)}
	require.False(t, eng.IsExpired(ancient, time.Now()))
}

func TestShouldWriteBack(t *testing.T) {
	eng := New(nil)
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.True(t, eng.ShouldWriteBack(t1, nil), "empty tier accepts any write")
	require.True(t, eng.ShouldWriteBack(t2, &types.CacheEntry{DataTimestamp: t1}), "newer data overwrites")
	require.False(t, eng.ShouldWriteBack(t1, &types.CacheEntry{DataTimestamp: t1}), "equal timestamp is skipped")
	require.False(t, eng.ShouldWriteBack(t1, &types.CacheEntry{DataTimestamp: t2}), "older data never regresses the tier")
}

func TestRefetchProvenance(t *testing.T) {
	eng := New(nil)
	require.Equal(t, types.ProvenanceSharedExpired, eng.RefetchProvenance(true))
	require.Equal(t, types.ProvenanceMiss, eng.RefetchProvenance(false))
}
