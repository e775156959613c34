package stack

import "errors"

var (
	// ErrUnsetKey is returned when a hypothesis has no recombination key.
	ErrUnsetKey = errors.New("stack: hypothesis has no recombination key")
	// ErrStaleRef is returned when the hypothesis handle does not resolve.
	ErrStaleRef = errors.New("stack: stale hypothesis reference")
	// ErrAlreadyAdmitted is returned when a hypothesis is admitted twice.
	ErrAlreadyAdmitted = errors.New("stack: hypothesis already admitted")
)
