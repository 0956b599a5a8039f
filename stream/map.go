package stream

import "fmt"

// MapFunc rewrites one record into another.
type MapFunc func(Record) (Record, error)

type mapOperator struct {
	fn   MapFunc
	next Operator
}

// Map applies fn to every record and forwards the result. Resets pass
// through untouched.
func Map(fn MapFunc, next Operator) Operator {
	return &mapOperator{fn: fn, next: next}
}

func (o *mapOperator) Next(r Record) error {
	out, err := o.fn(r)
	if err != nil {
		return fmt.Errorf("map: %w", err)
	}
	return o.next.Next(out)
}

func (o *mapOperator) Reset(r Record) error {
	return o.next.Reset(r)
}
