package types

import (
	"encoding/json"
	"fmt"
	"time"
)

/*
Dataset is the full parsed fault document: a mapping from entity type to a
mapping from entity id to the raw entity record, plus the instant the
authoritative data was produced.

A Dataset is never mutated after it is built. Refreshes replace the whole
value, so a *Dataset handed to a caller stays valid for as long as the caller
keeps it.
*/
type Dataset struct {

	// SourceTime is the top-level timestamp of the consolidated document.
	// It drives the monotonicity rules: a tier never regresses to a Dataset
	// with an older SourceTime.
	SourceTime time.Time

	// Data maps entity type -> entity id -> raw record.
	Data map[string]map[string]json.RawMessage
}

// datasetWire is the on-the-wire JSON shape of a Dataset.
type datasetWire struct {
	Timestamp string                                `json:"timestamp"`
	Data      map[string]map[string]json.RawMessage `json:"data"`
}

/*
ParseDataset parses an uncompressed consolidated document.

The document must carry a parseable RFC 3339 "timestamp" and every value
under "data" must itself be an id -> record object. Anything else is
rejected as malformed; a half-parsed Dataset is never returned.
*/
func ParseDataset(b []byte) (*Dataset, error) {
	var w datasetWire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parsing dataset document: %w", err)
	}
	return datasetFromWire(w)
}

func datasetFromWire(w datasetWire) (*Dataset, error) {
	if w.Timestamp == "" {
		return nil, fmt.Errorf("dataset document has no timestamp")
	}
	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset timestamp %q: %w", w.Timestamp, err)
	}
	if w.Data == nil {
		w.Data = map[string]map[string]json.RawMessage{}
	}
	return &Dataset{SourceTime: ts, Data: w.Data}, nil
}

// MarshalJSON renders the Dataset back into its wire form, so a Dataset
// served from any tier is byte-compatible with the origin document.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(datasetWire{
		Timestamp: d.SourceTime.UTC().Format(time.RFC3339),
		Data:      d.Data,
	})
}

// UnmarshalJSON parses the wire form, enforcing the same invariants as
// ParseDataset.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDataset(b)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// Entity returns the raw record for (entityType, entityID), if present.
func (d *Dataset) Entity(entityType, entityID string) (json.RawMessage, bool) {
	records, ok := d.Data[entityType]
	if !ok {
		return nil, false
	}
	rec, ok := records[entityID]
	return rec, ok
}

// Filter returns a Dataset restricted to a single entity type. The returned
// Dataset shares record values with the receiver; neither is mutated.
func (d *Dataset) Filter(entityType string) *Dataset {
	out := &Dataset{SourceTime: d.SourceTime, Data: map[string]map[string]json.RawMessage{}}
	if records, ok := d.Data[entityType]; ok {
		out.Data[entityType] = records
	}
	return out
}

// Counts returns the number of records per entity type.
func (d *Dataset) Counts() map[string]int {
	counts := make(map[string]int, len(d.Data))
	for entityType, records := range d.Data {
		counts[entityType] = len(records)
	}
	return counts
}

/*
EntityRecord is one pre-split record as stored in the origin: the original
record content augmented with provenance fields.
*/
type EntityRecord struct {

	// Key is the sanitized composite key the record was fetched under.
	Key string

	// Data is the raw JSON document, including the _originalId and
	// _entityType augmentation fields.
	Data json.RawMessage
}
