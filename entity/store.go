/*
Package entity serves single pre-split fault records straight from the
origin, bypassing the tiered loader.

There is intentionally no caching tier here. Each record is small enough
that fetch-and-parse already sits near the noise floor, and a cache would
add staleness risk out of proportion to the saving.
*/
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/jvb127/faultserve/origin"
	"github.com/jvb127/faultserve/types"
)

// IndexName is the file name of the flat key index the splitter writes
// alongside the per-entity files.
const IndexName = "index.json"

// Store resolves entity records against an origin prefix.
type Store struct {
	origin  origin.Store
	prefix  string
	metrics types.Metrics
}

// NewStore creates a Store reading records under prefix (e.g. "entities").
func NewStore(o origin.Store, prefix string, metrics types.Metrics) *Store {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	return &Store{origin: o, prefix: prefix, metrics: metrics}
}

// Get fetches the record for (entityType, entityID).
func (s *Store) Get(ctx context.Context, entityType, entityID string) (types.EntityRecord, error) {
	return s.GetByKey(ctx, types.EntityKey(entityType, entityID))
}

/*
GetByKey fetches a record by its composite key, as received from API
callers. The key is run through the same sanitizer that produced the file
names, which both normalizes sloppy input and keeps hostile input from
reaching the origin as a path.

A missing record yields types.ErrNotFound.
*/
func (s *Store) GetByKey(ctx context.Context, key string) (types.EntityRecord, error) {
	key = types.SanitizeComponent(key)
	if key == "" {
		s.metrics.EntityLookup(false)
		return types.EntityRecord{}, fmt.Errorf("entity key is empty: %w", types.ErrNotFound)
	}

	rc, err := s.origin.Fetch(ctx, path.Join(s.prefix, key+".json"))
	if err != nil {
		s.metrics.EntityLookup(false)
		if errors.Is(err, types.ErrNotFound) {
			return types.EntityRecord{}, err
		}
		return types.EntityRecord{}, fmt.Errorf("fetching entity %q: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		s.metrics.EntityLookup(false)
		return types.EntityRecord{}, fmt.Errorf("reading entity %q: %w", key, err)
	}
	if !json.Valid(data) {
		s.metrics.EntityLookup(false)
		return types.EntityRecord{}, fmt.Errorf("entity %q is not valid JSON", key)
	}

	s.metrics.EntityLookup(true)
	return types.EntityRecord{Key: key, Data: data}, nil
}

// Keys returns every composite entity key, from the index artifact the
// splitter writes next to the records.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rc, err := s.origin.Fetch(ctx, path.Join(s.prefix, IndexName))
	if err != nil {
		return nil, fmt.Errorf("fetching entity index: %w", err)
	}
	defer rc.Close()

	var keys []string
	if err := json.NewDecoder(rc).Decode(&keys); err != nil {
		return nil, fmt.Errorf("parsing entity index: %w", err)
	}
	return keys, nil
}
