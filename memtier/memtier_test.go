package memtier

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jvb127/faultserve/types"
)

func datasetAt(t *testing.T, ts string) *types.Dataset {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	return &types.Dataset{SourceTime: parsed, Data: map[string]map[string]json.RawMessage{}}
}

func TestEmptyTier(t *testing.T) {
	tier := New()
	ds, _, ok := tier.Get()
	require.False(t, ok)
	require.Nil(t, ds)
}

func TestInstallAndGet(t *testing.T) {
	tier := New()
	ds := datasetAt(t, "2026-01-01T00:00:00Z")
	now := time.Now()

	require.True(t, tier.Install(ds, now))

	got, installedAt, ok := tier.Get()
	require.True(t, ok)
	require.Same(t, ds, got)
	require.True(t, installedAt.Equal(now))
}

func TestInstallMonotonic(t *testing.T) {
	tier := New()
	newer := datasetAt(t, "2026-02-01T00:00:00Z")
	older := datasetAt(t, "2026-01-01T00:00:00Z")
	equal := datasetAt(t, "2026-02-01T00:00:00Z")

	require.True(t, tier.Install(newer, time.Now()))

	// Older data never displaces what is resident.
	require.False(t, tier.Install(older, time.Now()))
	got, _, _ := tier.Get()
	require.Same(t, newer, got)

	// Same timestamp wins: a re-fetch of the same snapshot may replace it.
	require.True(t, tier.Install(equal, time.Now()))
	got, _, _ = tier.Get()
	require.Same(t, equal, got)
}

func TestInstallConcurrent(t *testing.T) {
	tier := New()
	latest := datasetAt(t, "2026-12-31T00:00:00Z")

	var wg sync.WaitGroup
	for m := time.January; m <= time.December; m++ {
		wg.Add(1)
		go func(m time.Month) {
			defer wg.Done()
			ds := &types.Dataset{SourceTime: time.Date(2026, m, 31, 0, 0, 0, 0, time.UTC)}
			tier.Install(ds, time.Now())
		}(m)
	}
	wg.Wait()

	got, _, ok := tier.Get()
	require.True(t, ok)
	require.True(t, got.SourceTime.Equal(latest.SourceTime))
}
