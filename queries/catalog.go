package queries

import "github.com/mireska/sift/stream"

// Published defaults for the catalog. Thresholds are per window.
const (
	DefaultEpochSeconds = 1.0

	NewConnThreshold         = 40
	BruteForceThreshold      = 40
	SuperSpreaderThreshold   = 40
	PortScanThreshold        = 40
	DDoSThreshold            = 45
	SynFloodThreshold        = 3
	SynFloodEpochSeconds     = 1.0
	CompletedFlowsThreshold  = 1
	CompletedFlowsEpochSecs  = 30.0
	SlowlorisMinConns        = 5
	SlowlorisMinBytes        = 500
	SlowlorisMaxBytesPerConn = 90
)

// Ident strips the ethernet addresses and forwards everything else.
func Ident(next stream.Operator) Query {
	return Query{Name: "ident", Entries: []stream.Operator{
		stream.Map(func(r stream.Record) (stream.Record, error) {
			return r.Without("eth.src", "eth.dst"), nil
		}, next),
	}}
}

// CountPackets reports the total packet count per window.
func CountPackets(next stream.Operator) Query {
	return Query{Name: "count_pkts", Entries: []stream.Operator{
		stream.Epoch(DefaultEpochSeconds, "eid",
			stream.GroupBy(stream.SingleGroup, stream.Counter, "pkts", next)),
	}}
}

// PacketsPerSrcDst reports per-window packet counts for every
// source/destination pair.
func PacketsPerSrcDst(next stream.Operator) Query {
	return Query{Name: "pkts_per_src_dst", Entries: []stream.Operator{
		stream.Epoch(DefaultEpochSeconds, "eid",
			stream.GroupBy(stream.GroupFields("ipv4.src", "ipv4.dst"),
				stream.Counter, "pkts", next)),
	}}
}

// DistinctSources reports how many distinct sources were seen per
// window.
func DistinctSources(next stream.Operator) Query {
	return Query{Name: "distinct_srcs", Entries: []stream.Operator{
		stream.Epoch(DefaultEpochSeconds, "eid",
			stream.Distinct(stream.GroupFields("ipv4.src"),
				stream.GroupBy(stream.SingleGroup, stream.Counter, "srcs", next))),
	}}
}

// TCPNewConnections flags destinations receiving an unusual number of
// connection attempts in one window.
func TCPNewConnections(next stream.Operator) Query {
	return tcpNewConnections(NewConnThreshold, DefaultEpochSeconds, next)
}

func tcpNewConnections(threshold int64, width float64, next stream.Operator) Query {
	return Query{Name: "tcp_new_cons", Entries: []stream.Operator{
		stream.Epoch(width, "eid",
			stream.Filter(tcpWithFlags(2),
				stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.Counter, "cons",
					stream.Filter(stream.FieldGeqInt("cons", threshold), next)))),
	}}
}

// SSHBruteForce flags SSH servers probed by many distinct sources
// sending equal-length packets in one window.
func SSHBruteForce(next stream.Operator) Query {
	return sshBruteForce(BruteForceThreshold, DefaultEpochSeconds, next)
}

func sshBruteForce(threshold int64, width float64, next stream.Operator) Query {
	return Query{Name: "ssh_brute_force", Entries: []stream.Operator{
		stream.Epoch(width, "eid",
			stream.Filter(stream.And(
				stream.FieldEqInt("ipv4.proto", 6),
				stream.FieldEqInt("l4.dport", 22)),
				stream.Distinct(stream.GroupFields("ipv4.src", "ipv4.dst", "ipv4.len"),
					stream.GroupBy(stream.GroupFields("ipv4.dst", "ipv4.len"),
						stream.Counter, "srcs",
						stream.Filter(stream.FieldGeqInt("srcs", threshold), next))))),
	}}
}

// SuperSpreader flags sources contacting many distinct destinations
// in one window.
func SuperSpreader(next stream.Operator) Query {
	return superSpreader(SuperSpreaderThreshold, DefaultEpochSeconds, next)
}

func superSpreader(threshold int64, width float64, next stream.Operator) Query {
	return Query{Name: "super_spreader", Entries: []stream.Operator{
		stream.Epoch(width, "eid",
			stream.Distinct(stream.GroupFields("ipv4.src", "ipv4.dst"),
				stream.GroupBy(stream.GroupFields("ipv4.src"), stream.Counter, "dsts",
					stream.Filter(stream.FieldGeqInt("dsts", threshold), next)))),
	}}
}

// PortScan flags sources probing many distinct ports in one window.
func PortScan(next stream.Operator) Query {
	return portScan(PortScanThreshold, DefaultEpochSeconds, next)
}

func portScan(threshold int64, width float64, next stream.Operator) Query {
	return Query{Name: "port_scan", Entries: []stream.Operator{
		stream.Epoch(width, "eid",
			stream.Distinct(stream.GroupFields("ipv4.src", "l4.dport"),
				stream.GroupBy(stream.GroupFields("ipv4.src"), stream.Counter, "ports",
					stream.Filter(stream.FieldGeqInt("ports", threshold), next)))),
	}}
}

// DDoS flags destinations contacted by many distinct sources in one
// window.
func DDoS(next stream.Operator) Query {
	return ddos(DDoSThreshold, DefaultEpochSeconds, next)
}

func ddos(threshold int64, width float64, next stream.Operator) Query {
	return Query{Name: "ddos", Entries: []stream.Operator{
		stream.Epoch(width, "eid",
			stream.Distinct(stream.GroupFields("ipv4.src", "ipv4.dst"),
				stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.Counter, "srcs",
					stream.Filter(stream.FieldGeqInt("srcs", threshold), next)))),
	}}
}

// SynFlood flags hosts where connection attempts plus handshake
// replies run well ahead of completed handshakes. Three aggregated
// branches meet in two joins: syns plus synacks on one side, acks on
// the other.
func SynFlood(next stream.Operator) Query {
	return synFlood(SynFloodThreshold, SynFloodEpochSeconds, next)
}

func synFlood(threshold int64, width float64, next stream.Operator) Query {
	imbalance := stream.Map(func(r stream.Record) (stream.Record, error) {
		sum, err := r.Int("syns+synacks")
		if err != nil {
			return nil, err
		}
		acks, err := r.Int("acks")
		if err != nil {
			return nil, err
		}
		return r.With("syns+synacks-acks", stream.Int(sum-acks)), nil
	}, stream.Filter(stream.FieldGeqInt("syns+synacks-acks", threshold), next))

	handshakes, ackSide := stream.Join(
		func(r stream.Record) (stream.Record, stream.Record) {
			return r.Project("host"), r.Project("syns+synacks")
		},
		func(r stream.Record) (stream.Record, stream.Record) {
			return stream.RenameFiltered(r, stream.Rename{From: "ipv4.dst", To: "host"}),
				r.Project("acks")
		},
		imbalance)

	sum := stream.Map(func(r stream.Record) (stream.Record, error) {
		syns, err := r.Int("syns")
		if err != nil {
			return nil, err
		}
		synacks, err := r.Int("synacks")
		if err != nil {
			return nil, err
		}
		return r.With("syns+synacks", stream.Int(syns+synacks)), nil
	}, handshakes)

	synSide, synackSide := stream.Join(
		func(r stream.Record) (stream.Record, stream.Record) {
			return stream.RenameFiltered(r, stream.Rename{From: "ipv4.dst", To: "host"}),
				r.Project("syns")
		},
		func(r stream.Record) (stream.Record, stream.Record) {
			return stream.RenameFiltered(r, stream.Rename{From: "ipv4.src", To: "host"}),
				r.Project("synacks")
		},
		sum)

	syns := stream.Epoch(width, "eid",
		stream.Filter(tcpWithFlags(2),
			stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.Counter, "syns", synSide)))
	synacks := stream.Epoch(width, "eid",
		stream.Filter(tcpWithFlags(18),
			stream.GroupBy(stream.GroupFields("ipv4.src"), stream.Counter, "synacks", synackSide)))
	acks := stream.Epoch(width, "eid",
		stream.Filter(tcpWithFlags(16),
			stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.Counter, "acks", ackSide)))

	return Query{Name: "syn_flood", Entries: []stream.Operator{syns, synacks, acks}}
}

// CompletedFlows flags hosts accumulating opened connections that
// never finish: syn counts joined against fin counts per window.
func CompletedFlows(next stream.Operator) Query {
	return completedFlows(CompletedFlowsThreshold, CompletedFlowsEpochSecs, next)
}

func completedFlows(threshold int64, width float64, next stream.Operator) Query {
	diff := stream.Map(func(r stream.Record) (stream.Record, error) {
		syns, err := r.Int("syns")
		if err != nil {
			return nil, err
		}
		fins, err := r.Int("fins")
		if err != nil {
			return nil, err
		}
		return r.With("diff", stream.Int(syns-fins)), nil
	}, stream.Filter(stream.FieldGeqInt("diff", threshold), next))

	synSide, finSide := stream.Join(
		func(r stream.Record) (stream.Record, stream.Record) {
			return stream.RenameFiltered(r, stream.Rename{From: "ipv4.dst", To: "host"}),
				r.Project("syns")
		},
		func(r stream.Record) (stream.Record, stream.Record) {
			return stream.RenameFiltered(r, stream.Rename{From: "ipv4.src", To: "host"}),
				r.Project("fins")
		},
		diff)

	syns := stream.Epoch(width, "eid",
		stream.Filter(tcpWithFlags(2),
			stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.Counter, "syns", synSide)))
	fins := stream.Epoch(width, "eid",
		stream.Filter(tcpWithFlagBit(1),
			stream.GroupBy(stream.GroupFields("ipv4.src"), stream.Counter, "fins", finSide)))

	return Query{Name: "completed_flows", Entries: []stream.Operator{syns, fins}}
}

// Slowloris flags hosts holding many connections that each move very
// few bytes: per-window connection counts joined against byte counts.
func Slowloris(next stream.Operator) Query {
	return slowloris(SlowlorisMinConns, SlowlorisMinBytes, SlowlorisMaxBytesPerConn,
		DefaultEpochSeconds, next)
}

func slowloris(minConns, minBytes, maxBytesPerConn int64, width float64, next stream.Operator) Query {
	perConn := stream.Map(func(r stream.Record) (stream.Record, error) {
		bytes, err := r.Int("n_bytes")
		if err != nil {
			return nil, err
		}
		conns, err := r.Int("n_conns")
		if err != nil {
			return nil, err
		}
		return r.With("bytes_per_conn", stream.Int(bytes/conns)), nil
	}, stream.Filter(fieldLeqInt("bytes_per_conn", maxBytesPerConn), next))

	connSide, byteSide := stream.Join(
		func(r stream.Record) (stream.Record, stream.Record) {
			return r.Project("ipv4.dst"), r.Project("n_conns")
		},
		func(r stream.Record) (stream.Record, stream.Record) {
			return r.Project("ipv4.dst"), r.Project("n_bytes")
		},
		perConn)

	conns := stream.Epoch(width, "eid",
		stream.Filter(stream.FieldEqInt("ipv4.proto", 6),
			stream.Distinct(stream.GroupFields("ipv4.src", "ipv4.dst", "l4.sport"),
				stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.Counter, "n_conns",
					stream.Filter(stream.FieldGeqInt("n_conns", minConns), connSide)))))
	bytes := stream.Epoch(width, "eid",
		stream.Filter(stream.FieldEqInt("ipv4.proto", 6),
			stream.GroupBy(stream.GroupFields("ipv4.dst"), stream.SumField("ipv4.len"), "n_bytes",
				stream.Filter(stream.FieldGeqInt("n_bytes", minBytes), byteSide))))

	return Query{Name: "slowloris", Entries: []stream.Operator{conns, bytes}}
}
