package types

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a requested record is missing from a store. It is a
// normal outcome for entity lookups, not a failure.
var ErrNotFound = errors.New("record not found")

/*
LoadErrorKind classifies the only two ways a load can fail outright.

Shared-tier problems never surface here: a shared store read error degrades
to a miss and a write error is logged and swallowed, because the origin can
still produce a dataset.
*/
type LoadErrorKind string

const (
	// OriginUnavailable: the origin store could not be reached (network or
	// storage failure, or fetch timeout). Retriable; never cached.
	OriginUnavailable LoadErrorKind = "origin_unavailable"

	// Malformed: the origin blob could not be decompressed or parsed, or is
	// missing its source timestamp. Retriable only once the blob is fixed;
	// never cached as a negative result.
	Malformed LoadErrorKind = "malformed"
)

// LoadError is the failure surfaced by the tiered loader when no dataset can
// be produced at all.
type LoadError struct {
	Kind LoadErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset load failed (%s): %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError wraps err with a failure classification.
func NewLoadError(kind LoadErrorKind, err error) *LoadError {
	return &LoadError{Kind: kind, Err: err}
}

// LoadErrorKindOf reports the classification of err, or "" if err is not a
// LoadError.
func LoadErrorKindOf(err error) LoadErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
