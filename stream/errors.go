package stream

import (
	"errors"
	"fmt"
)

// The operator runtime is fail fast: the first error produced while
// processing a record unwinds through the chain to the producer, which
// decides whether to stop or skip. Errors carry one of the sentinel
// classifications below so drivers can tell malformed input apart from
// aggregation failures.
var (
	// ErrTypeMismatch reports a value extraction on the wrong variant,
	// for example reading an IPv4 field as an int.
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrMissingField reports a lookup of a field the record does not
	// contain.
	ErrMissingField = errors.New("missing field")

	// ErrReduce reports a reduction that could not combine its
	// accumulator with the incoming record.
	ErrReduce = errors.New("reduce failed")
)

func typeMismatch(want string, got Kind) error {
	return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, got, want)
}
