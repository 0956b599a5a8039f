// Package stream implements a push-based operator runtime for network
// telemetry. Producers drive a chain of operators by calling Next for
// each record and Reset at window boundaries; operators transform,
// aggregate or route records and push downstream synchronously. A
// chain is built from the sink backwards, each constructor wrapping
// the operator that follows it.
package stream

// Operator consumes a stream of records punctuated by resets.
//
// Next processes one record. Reset marks the end of the current window;
// its record carries window metadata (typically the epoch id) and
// stateful operators flush and clear their tables before propagating
// it. Both calls run on the producer's goroutine and any error aborts
// the delivery, unwinding to the producer unchanged.
type Operator interface {
	Next(r Record) error
	Reset(r Record) error
}
