package stream

import "sort"

type distinctOperator struct {
	groupFn GroupFunc
	next    Operator
	seen    map[string]Record
}

// Distinct deduplicates records within a window by their groupFn key.
// On reset each key seen during the window is emitted once, merged
// with the reset record, then the table is cleared and the reset
// propagates. Like GroupBy, keys are flushed in canonical order.
func Distinct(groupFn GroupFunc, next Operator) Operator {
	return &distinctOperator{
		groupFn: groupFn,
		next:    next,
		seen:    make(map[string]Record),
	}
}

func (o *distinctOperator) Next(r Record) error {
	key := o.groupFn(r)
	o.seen[key.canonicalKey()] = key
	return nil
}

func (o *distinctOperator) Reset(r Record) error {
	cks := make([]string, 0, len(o.seen))
	for ck := range o.seen {
		cks = append(cks, ck)
	}
	sort.Strings(cks)
	for _, ck := range cks {
		if err := o.next.Next(Merge(o.seen[ck], r)); err != nil {
			return err
		}
	}
	clear(o.seen)
	return o.next.Reset(r)
}
