package beamgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/internal/resource"
	"github.com/hupe1980/beamgo/stack"
)

var (
	// ErrClosed is returned when using a closed Decoder or Session.
	ErrClosed = errors.New("beamgo: closed")
	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("beamgo: invalid config")
	// ErrNotFound is returned when a handle does not resolve.
	ErrNotFound = errors.New("beamgo: hypothesis not found")
	// ErrMemoryLimit is returned when the decoder memory budget is exhausted.
	ErrMemoryLimit = errors.New("beamgo: memory limit exceeded")
	// ErrInvalidSpan is returned for a span with Start > End or Start < 0.
	ErrInvalidSpan = errors.New("beamgo: invalid span")
)

// ErrContract indicates a caller broke an admission contract
// (unset key, stale handle, double admission, unresolved antecedent).
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrContract struct {
	Op    string
	Ref   core.Ref
	cause error
}

func (e *ErrContract) Error() string {
	return fmt.Sprintf("contract violation in %s for %s: %v", e.Op, e.Ref, e.cause)
}

func (e *ErrContract) Unwrap() error { return e.cause }

func translateError(op string, ref core.Ref, err error) error {
	if err == nil {
		return nil
	}

	// Memory budget.
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimit, err)
	}

	// Stale handles and pruned antecedents surface as not found.
	if errors.Is(err, hypo.ErrStaleRef) || errors.Is(err, hypo.ErrStaleAntecedent) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Caller contract.
	if errors.Is(err, stack.ErrUnsetKey) ||
		errors.Is(err, stack.ErrStaleRef) ||
		errors.Is(err, stack.ErrAlreadyAdmitted) ||
		errors.Is(err, hypo.ErrInvalidAntecedent) {
		return &ErrContract{Op: op, Ref: ref, cause: err}
	}

	return err
}
