package stream

import (
	"fmt"
	"sort"
)

// GroupFunc derives the grouping key for a record, usually a
// projection of a few of its fields. Returning an empty record puts
// every record in one group.
type GroupFunc func(Record) Record

// ReduceFunc folds one record into a per-group accumulator. The
// accumulator starts out Empty for a fresh group. Errors are reported
// wrapped in ErrReduce and abort the epoch.
type ReduceFunc func(acc Value, r Record) (Value, error)

// SingleGroup maps every record to the same group.
func SingleGroup(Record) Record { return Record{} }

// GroupFields groups records by a projection of the named fields.
func GroupFields(names ...string) GroupFunc {
	return func(r Record) Record {
		return r.Project(names...)
	}
}

type group struct {
	key Record
	acc Value
}

type groupByOperator struct {
	groupFn GroupFunc
	reduce  ReduceFunc
	outKey  string
	next    Operator
	groups  map[string]*group
}

// GroupBy folds records into per-group accumulators for the duration
// of a window. On reset each group emits one record downstream, the
// union of the reset record, the group key and the accumulator under
// outKey, after which the table is cleared and the reset propagates.
// Groups are flushed in canonical key order so downstream output is
// deterministic.
func GroupBy(groupFn GroupFunc, reduce ReduceFunc, outKey string, next Operator) Operator {
	return &groupByOperator{
		groupFn: groupFn,
		reduce:  reduce,
		outKey:  outKey,
		next:    next,
		groups:  make(map[string]*group),
	}
}

func (o *groupByOperator) Next(r Record) error {
	key := o.groupFn(r)
	ck := key.canonicalKey()
	g, ok := o.groups[ck]
	if !ok {
		g = &group{key: key}
		o.groups[ck] = g
	}
	acc, err := o.reduce(g.acc, r)
	if err != nil {
		return fmt.Errorf("groupby %q: %w", o.outKey, err)
	}
	g.acc = acc
	return nil
}

func (o *groupByOperator) Reset(r Record) error {
	cks := make([]string, 0, len(o.groups))
	for ck := range o.groups {
		cks = append(cks, ck)
	}
	sort.Strings(cks)
	for _, ck := range cks {
		g := o.groups[ck]
		if err := o.next.Next(Merge(g.key, r, Record{o.outKey: g.acc})); err != nil {
			return err
		}
	}
	clear(o.groups)
	return o.next.Reset(r)
}

// Counter reduces a group to the number of records seen in the window.
func Counter(acc Value, _ Record) (Value, error) {
	switch acc.Kind() {
	case KindEmpty:
		return Int(1), nil
	case KindInt:
		n, _ := acc.AsInt()
		return Int(n + 1), nil
	}
	return acc, nil
}

// SumField reduces a group to the sum of the named int field. The
// first record of a group only arms the accumulator at zero; its own
// field value is not added. A record whose field is missing or not an
// int fails the reduction.
func SumField(name string) ReduceFunc {
	return func(acc Value, r Record) (Value, error) {
		switch acc.Kind() {
		case KindEmpty:
			return Int(0), nil
		case KindInt:
			n, err := r.Int(name)
			if err != nil {
				return acc, fmt.Errorf("%w: sum %q: %v", ErrReduce, name, err)
			}
			sum, _ := acc.AsInt()
			return Int(sum + n), nil
		}
		return acc, nil
	}
}
