package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"timestamp": "2026-01-15T08:30:00Z",
	"data": {
		"fault_system": {
			"Clinton Fault": {"name": "Clinton Fault", "slip_rate_mm_yr": 1.2},
			"Wasatch Fault": {"name": "Wasatch Fault", "slip_rate_mm_yr": 1.7}
		},
		"seismic_zone": {
			"Zone A": {"name": "Zone A"}
		}
	}
}`

func TestParseDataset(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleDoc))
	require.NoError(t, err)

	want, _ := time.Parse(time.RFC3339, "2026-01-15T08:30:00Z")
	require.True(t, ds.SourceTime.Equal(want))
	require.Len(t, ds.Data, 2)
	require.Len(t, ds.Data["fault_system"], 2)

	rec, ok := ds.Entity("fault_system", "Clinton Fault")
	require.True(t, ok)
	require.True(t, json.Valid(rec))

	_, ok = ds.Entity("fault_system", "No Such Fault")
	require.False(t, ok)
	_, ok = ds.Entity("no_such_type", "Clinton Fault")
	require.False(t, ok)
}

func TestParseDatasetRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"timestamp": `},
		{name: "missing timestamp", doc: `{"data": {}}`},
		{name: "unparseable timestamp", doc: `{"timestamp": "yesterday", "data": {}}`},
		{name: "data value not an object", doc: `{"timestamp": "2026-01-15T08:30:00Z", "data": {"fault_system": 7}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataset([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestParseDatasetEmptyData(t *testing.T) {
	ds, err := ParseDataset([]byte(`{"timestamp": "2026-01-15T08:30:00Z"}`))
	require.NoError(t, err)
	require.NotNil(t, ds.Data)
	require.Empty(t, ds.Data)
}

func TestDatasetMarshalRoundTrip(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleDoc))
	require.NoError(t, err)

	b, err := json.Marshal(ds)
	require.NoError(t, err)

	var back Dataset
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.SourceTime.Equal(ds.SourceTime))
	require.Equal(t, ds.Counts(), back.Counts())
}

func TestDatasetFilter(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleDoc))
	require.NoError(t, err)

	only := ds.Filter("seismic_zone")
	require.True(t, only.SourceTime.Equal(ds.SourceTime))
	require.Len(t, only.Data, 1)
	require.Len(t, only.Data["seismic_zone"], 1)

	// Unknown type yields an empty dataset, not an error.
	none := ds.Filter("volcano")
	require.Empty(t, none.Data)
}

func TestDatasetCounts(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleDoc))
	require.NoError(t, err)
	require.Equal(t, map[string]int{"fault_system": 2, "seismic_zone": 1}, ds.Counts())
}
