package types

// This file defines how the loader reports what it is doing.

/*
Metrics is the set of events the loading pipeline wants measured. The loader
calls these methods as things happen; implementations decide what to do with
them (the metrics package exports them to Prometheus, tests count them).
*/
type Metrics interface {

	// Load is called when a load succeeds, with the tier that answered it.
	Load(p Provenance)

	// LoadFailure is called when a load fails outright.
	LoadFailure(kind LoadErrorKind)

	// WriteBack is called after a shared-tier write-back attempt.
	WriteBack(ok bool)

	// Refresh is called when a background max-residency refresh is
	// triggered.
	Refresh()

	// EntityLookup is called after an entity store lookup.
	EntityLookup(found bool)
}

/*
NoopMetrics is the default Metrics implementation. It lets components skip
nil checks: anything constructed without explicit metrics gets this instead.
*/
type NoopMetrics struct{}

func (NoopMetrics) Load(Provenance)           {}
func (NoopMetrics) LoadFailure(LoadErrorKind) {}
func (NoopMetrics) WriteBack(bool)            {}
func (NoopMetrics) Refresh()                  {}
func (NoopMetrics) EntityLookup(bool)         {}
