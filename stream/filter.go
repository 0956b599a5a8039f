package stream

import "fmt"

// Predicate decides whether a record passes a Filter.
type Predicate func(Record) (bool, error)

type filterOperator struct {
	pred Predicate
	next Operator
}

// Filter forwards records for which pred holds and drops the rest.
// Resets pass through untouched.
func Filter(pred Predicate, next Operator) Operator {
	return &filterOperator{pred: pred, next: next}
}

func (o *filterOperator) Next(r Record) error {
	ok, err := o.pred(r)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if !ok {
		return nil
	}
	return o.next.Next(r)
}

func (o *filterOperator) Reset(r Record) error {
	return o.next.Reset(r)
}

// FieldGeqInt builds a predicate that holds when the named int field
// is at least threshold.
func FieldGeqInt(name string, threshold int64) Predicate {
	return func(r Record) (bool, error) {
		n, err := r.Int(name)
		if err != nil {
			return false, err
		}
		return n >= threshold, nil
	}
}

// FieldEqInt builds a predicate that holds when the named int field
// equals want.
func FieldEqInt(name string, want int64) Predicate {
	return func(r Record) (bool, error) {
		n, err := r.Int(name)
		if err != nil {
			return false, err
		}
		return n == want, nil
	}
}

// And combines predicates, short-circuiting on the first miss.
func And(preds ...Predicate) Predicate {
	return func(r Record) (bool, error) {
		for _, pred := range preds {
			ok, err := pred(r)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}
