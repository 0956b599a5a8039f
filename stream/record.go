package stream

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one telemetry event: a flat map from field names to
// values. Records are treated as immutable once handed to an operator;
// every transformation below builds a fresh map and leaves its inputs
// untouched. Operators that need a private copy take one explicitly
// with Clone.
type Record map[string]Value

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// With returns a copy of r with name set to v.
func (r Record) With(name string, v Value) Record {
	out := make(Record, len(r)+1)
	for k, val := range r {
		out[k] = val
	}
	out[name] = v
	return out
}

// Int looks up name and extracts its int payload. A missing field
// fails with ErrMissingField, a non-int field with ErrTypeMismatch.
func (r Record) Int(name string) (int64, error) {
	v, ok := r[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", name, err)
	}
	return n, nil
}

// Float looks up name and extracts its float payload. A missing field
// fails with ErrMissingField, a non-float field with ErrTypeMismatch.
func (r Record) Float(name string) (float64, error) {
	v, ok := r[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	f, err := v.AsFloat()
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", name, err)
	}
	return f, nil
}

// Project returns a new record holding only the named fields. Names
// absent from r are skipped.
func (r Record) Project(names ...string) Record {
	out := make(Record, len(names))
	for _, name := range names {
		if v, ok := r[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Without returns a new record holding every field of r except the
// named ones.
func (r Record) Without(names ...string) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// Merge unions the given records into a new one. When a field appears
// in more than one record the later argument wins.
func Merge(records ...Record) Record {
	n := 0
	for _, r := range records {
		n += len(r)
	}
	out := make(Record, n)
	for _, r := range records {
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}

// Rename names one field-rename pair for RenameFiltered.
type Rename struct {
	From string
	To   string
}

// RenameFiltered projects the From fields of r that are present and
// returns them under their To names. Fields of r not named in any pair
// are dropped.
func RenameFiltered(r Record, renames ...Rename) Record {
	out := make(Record, len(renames))
	for _, rn := range renames {
		if v, ok := r[rn.From]; ok {
			out[rn.To] = v
		}
	}
	return out
}

// String renders r as sorted name=value pairs for logs and dumps.
func (r Record) String() string {
	parts := make([]string, 0, len(r))
	for _, name := range r.sortedNames() {
		parts = append(parts, name+"="+r[name].String())
	}
	return strings.Join(parts, ", ")
}

func (r Record) sortedNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// canonicalKey renders r into an order-independent string so records
// with equal fields hash to the same table slot. Field names are
// sorted and joined with a separator that cannot appear in rendered
// values.
func (r Record) canonicalKey() string {
	var b strings.Builder
	for i, name := range r.sortedNames() {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(r[name].String())
	}
	return b.String()
}
