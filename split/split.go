/*
Package split implements the build-time step that explodes a consolidated
dataset into one file per entity, plus the flat key index.

The per-entity files are what the entity store fetches at request time, so
the naming here and the lookup there go through the same sanitizer.
*/
package split

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jvb127/faultserve/entity"
	"github.com/jvb127/faultserve/types"
)

/*
WriteFiles writes every entity record of ds into dir as
<sanitized type>_<sanitized id>.json, augmented with _originalId and
_entityType, then writes the index artifact listing all keys.

Records that are not JSON objects cannot carry the augmentation fields and
are skipped with a warning, as is the second record of a sanitized-key
collision. Returns the keys written, sorted.
*/
func WriteFiles(ds *types.Dataset, dir string, logger log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	seen := map[string]string{}
	keys := []string{}

	for entityType, records := range ds.Data {
		for id, rec := range records {
			key := types.EntityKey(entityType, id)
			if prev, dup := seen[key]; dup {
				level.Warn(logger).Log("msg", "sanitized key collision, skipping record",
					"key", key, "kept", prev, "skipped", entityType+"/"+id)
				continue
			}

			augmented, err := augment(rec, entityType, id)
			if err != nil {
				level.Warn(logger).Log("msg", "skipping non-object record",
					"entity_type", entityType, "id", id, "err", err)
				continue
			}

			if err := os.WriteFile(filepath.Join(dir, key+".json"), augmented, 0o644); err != nil {
				return nil, fmt.Errorf("writing entity %q: %w", key, err)
			}
			seen[key] = entityType + "/" + id
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	index, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, entity.IndexName), index, 0o644); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}

	return keys, nil
}

// augment adds the provenance fields to one record. The record must be a
// JSON object.
func augment(rec json.RawMessage, entityType, id string) ([]byte, error) {
	var obj map[string]any
	if err := json.Unmarshal(rec, &obj); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	obj["_originalId"] = id
	obj["_entityType"] = entityType
	return json.Marshal(obj)
}
