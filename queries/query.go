// Package queries is the detection catalog: named operator chains
// that turn the raw packet stream into per-window security verdicts.
// Every query is built backwards from a caller-supplied terminal
// operator, so the same catalog drives dumps, brokers or test
// captures unchanged.
package queries

import (
	"fmt"
	"sort"

	"github.com/mireska/sift/stream"
)

// Query is a named detection pipeline. Entries are the operator
// chains the producer must feed; most queries expose one entry, join
// queries expose one per upstream branch. All entries of a query are
// fed the same stream.
type Query struct {
	Name    string
	Entries []stream.Operator
}

// BuildFunc builds a query terminating at next.
type BuildFunc func(next stream.Operator) Query

// Registry holds every catalog query under its canonical name.
var Registry = map[string]BuildFunc{
	"ident":            Ident,
	"count_pkts":       CountPackets,
	"pkts_per_src_dst": PacketsPerSrcDst,
	"distinct_srcs":    DistinctSources,
	"tcp_new_cons":     TCPNewConnections,
	"ssh_brute_force":  SSHBruteForce,
	"super_spreader":   SuperSpreader,
	"port_scan":        PortScan,
	"ddos":             DDoS,
	"syn_flood":        SynFlood,
	"completed_flows":  CompletedFlows,
	"slowloris":        Slowloris,
}

// Build constructs the named query terminating at next.
func Build(name string, next stream.Operator) (Query, error) {
	build, ok := Registry[name]
	if !ok {
		return Query{}, fmt.Errorf("unknown query %q", name)
	}
	return build(next), nil
}

// Names lists the catalog in sorted order.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tcpWithFlags matches TCP packets with the exact flag byte. The
// proto check runs first so non-IP records fail fast only when a
// query actually needs the field.
func tcpWithFlags(flags int64) stream.Predicate {
	return stream.And(
		stream.FieldEqInt("ipv4.proto", 6),
		stream.FieldEqInt("l4.flags", flags),
	)
}

// tcpWithFlagBit matches TCP packets with the given flag bit set,
// regardless of the rest of the byte.
func tcpWithFlagBit(bit int64) stream.Predicate {
	return stream.And(
		stream.FieldEqInt("ipv4.proto", 6),
		func(r stream.Record) (bool, error) {
			flags, err := r.Int("l4.flags")
			if err != nil {
				return false, err
			}
			return flags&bit == bit, nil
		},
	)
}

func fieldLeqInt(name string, threshold int64) stream.Predicate {
	return func(r stream.Record) (bool, error) {
		n, err := r.Int(name)
		if err != nil {
			return false, err
		}
		return n <= threshold, nil
	}
}
