package types

/*
Provenance records which tier satisfied a load. It is observability-only:
it is counted in metrics and surfaced in Server-Timing headers, and core
logic never branches on it.
*/
type Provenance string

const (
	// ProvenanceMemory: the process-resident dataset answered the load.
	ProvenanceMemory Provenance = "MEMORY"

	// ProvenanceSharedValid: a shared-tier entry within its TTL answered
	// the load.
	ProvenanceSharedValid Provenance = "SHARED_VALID"

	// ProvenanceMiss: no shared-tier entry existed; the origin was fetched.
	ProvenanceMiss Provenance = "MISS"

	// ProvenanceSharedExpired: a shared-tier entry existed but was past its
	// TTL; the origin was fetched.
	ProvenanceSharedExpired Provenance = "SHARED_EXPIRED"
)

func (p Provenance) String() string { return string(p) }
