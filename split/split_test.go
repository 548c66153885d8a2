package split

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jvb127/faultserve/types"
)

func testDataset(t *testing.T) *types.Dataset {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-01-15T08:30:00Z")
	require.NoError(t, err)
	return &types.Dataset{
		SourceTime: ts,
		Data: map[string]map[string]json.RawMessage{
			"fault_system": {
				"Clinton Fault": json.RawMessage(`{"name":"Clinton Fault","slip_rate_mm_yr":1.2}`),
			},
			"seismic_zone": {
				"Zone A": json.RawMessage(`{"name":"Zone A"}`),
			},
		},
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	keys, err := WriteFiles(testDataset(t), dir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"fault_system_Clinton_Fault", "seismic_zone_Zone_A"}, keys)

	// Each record carries its provenance fields.
	b, err := os.ReadFile(filepath.Join(dir, "fault_system_Clinton_Fault.json"))
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(b, &rec))
	require.Equal(t, "Clinton Fault", rec["_originalId"])
	require.Equal(t, "fault_system", rec["_entityType"])
	require.Equal(t, "Clinton Fault", rec["name"])
	require.Equal(t, 1.2, rec["slip_rate_mm_yr"])

	// The index lists every written key, sorted.
	b, err = os.ReadFile(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	var index []string
	require.NoError(t, json.Unmarshal(b, &index))
	require.Equal(t, keys, index)
}

func TestWriteFilesSkipsNonObjectRecords(t *testing.T) {
	ds := testDataset(t)
	ds.Data["fault_system"]["Broken"] = json.RawMessage(`[1, 2, 3]`)

	dir := t.TempDir()
	keys, err := WriteFiles(ds, dir, nil)
	require.NoError(t, err)
	require.NotContains(t, keys, "fault_system_Broken")
	require.NoFileExists(t, filepath.Join(dir, "fault_system_Broken.json"))
}

func TestWriteFilesSkipsKeyCollisions(t *testing.T) {
	ds := testDataset(t)
	// Sanitizes to the same key as "Clinton Fault".
	ds.Data["fault_system"]["Clinton/Fault"] = json.RawMessage(`{"name":"impostor"}`)

	dir := t.TempDir()
	keys, err := WriteFiles(ds, dir, nil)
	require.NoError(t, err)

	count := 0
	for _, k := range keys {
		if k == "fault_system_Clinton_Fault" {
			count++
		}
	}
	require.Equal(t, 1, count, "exactly one record per sanitized key")
}

func TestWriteFilesEmptyDataset(t *testing.T) {
	ds := &types.Dataset{SourceTime: time.Now(), Data: map[string]map[string]json.RawMessage{}}
	dir := t.TempDir()

	keys, err := WriteFiles(ds, dir, nil)
	require.NoError(t, err)
	require.Empty(t, keys)

	b, err := os.ReadFile(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(b))
}
