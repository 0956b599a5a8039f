package stream

import "fmt"

// DefaultEidKey is the field joins read window ids from unless
// overridden with JoinEidKey.
const DefaultEidKey = "eid"

// KeyExtractor splits a record into the fields to match on and the
// fields to carry into the joined output.
type KeyExtractor func(Record) (key, val Record)

// JoinOption configures a Join.
type JoinOption func(*joinCore)

// JoinEidKey overrides the field both sides read window ids from.
func JoinEidKey(name string) JoinOption {
	return func(c *joinCore) { c.eidKey = name }
}

type joinCore struct {
	eidKey string
	next   Operator
	left   joinSide
	right  joinSide
}

type joinSide struct {
	extract KeyExtractor
	pending map[string]Record
	epoch   int64
}

type joinHandle struct {
	core  *joinCore
	mine  *joinSide
	other *joinSide
}

// Join matches records arriving on two upstream branches within the
// same window. Each side extracts a (key, val) pair from its records;
// a record whose key plus window id finds a counterpart stored by the
// other side emits the union of key, both vals and the window id, and
// consumes the counterpart. Otherwise the record's val is parked in
// this side's pending table until a match arrives. Pending entries
// that never match are retained indefinitely.
//
// Both returned operators feed one shared core, so a join consumes
// exactly two upstream branches and must not be shared further.
// Downstream resets are governed by a watermark: the reset for window
// e is emitted only once both sides have moved past e, which keeps
// late records on the slower side inside their window.
func Join(left, right KeyExtractor, next Operator, opts ...JoinOption) (Operator, Operator) {
	core := &joinCore{
		eidKey: DefaultEidKey,
		next:   next,
		left:   joinSide{extract: left, pending: make(map[string]Record)},
		right:  joinSide{extract: right, pending: make(map[string]Record)},
	}
	for _, opt := range opts {
		opt(core)
	}
	l := &joinHandle{core: core, mine: &core.left, other: &core.right}
	r := &joinHandle{core: core, mine: &core.right, other: &core.left}
	return l, r
}

func (h *joinHandle) Next(r Record) error {
	key, val := h.mine.extract(r)
	eid, err := r.Int(h.core.eidKey)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	if err := h.advance(eid); err != nil {
		return err
	}
	probe := Merge(key, Record{h.core.eidKey: Int(eid)})
	ck := probe.canonicalKey()
	if otherVal, ok := h.other.pending[ck]; ok {
		delete(h.other.pending, ck)
		return h.core.next.Next(Merge(otherVal, val, probe))
	}
	h.mine.pending[ck] = val
	return nil
}

// Reset advances this side's watermark to the given window id. The
// pending tables are left alone; only the watermark moves, releasing
// downstream resets for windows both sides are done with.
func (h *joinHandle) Reset(r Record) error {
	eid, err := r.Int(h.core.eidKey)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	return h.advance(eid)
}

func (h *joinHandle) advance(eid int64) error {
	for eid > h.mine.epoch {
		if h.other.epoch > h.mine.epoch {
			if err := h.core.next.Reset(Record{h.core.eidKey: Int(h.mine.epoch)}); err != nil {
				return err
			}
		}
		h.mine.epoch++
	}
	return nil
}
