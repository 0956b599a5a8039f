package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireska/sift/stream"
)

type capture struct {
	records []stream.Record
	resets  []stream.Record
}

func (c *capture) Next(r stream.Record) error {
	c.records = append(c.records, r)
	return nil
}

func (c *capture) Reset(r stream.Record) error {
	c.resets = append(c.resets, r)
	return nil
}

func ipv4(t *testing.T, s string) stream.Value {
	t.Helper()
	v, err := stream.ParseIPv4(s)
	require.NoError(t, err)
	return v
}

func pkt(ts float64, fields stream.Record) stream.Record {
	return stream.Merge(stream.Record{"time": stream.Float(ts)}, fields)
}

// feed delivers every record to every entry of the query, the way the
// packet driver does.
func feed(t *testing.T, q Query, records ...stream.Record) {
	t.Helper()
	for _, r := range records {
		for _, entry := range q.Entries {
			require.NoError(t, entry.Next(r.Clone()))
		}
	}
}

func TestIdentStripsEthernetFields(t *testing.T) {
	sink := &capture{}
	q := Ident(sink)
	require.Len(t, q.Entries, 1)

	feed(t, q, stream.Record{
		"eth.src":  stream.MAC([6]byte{1, 2, 3, 4, 5, 6}),
		"eth.dst":  stream.MAC([6]byte{6, 5, 4, 3, 2, 1}),
		"ipv4.src": ipv4(t, "10.0.0.1"),
	})

	require.Len(t, sink.records, 1)
	assert.Equal(t, stream.Record{"ipv4.src": ipv4(t, "10.0.0.1")}, sink.records[0])
}

func TestCountPackets(t *testing.T) {
	sink := &capture{}
	q := CountPackets(sink)

	feed(t, q,
		pkt(0.1, stream.Record{"ipv4.len": stream.Int(40)}),
		pkt(0.2, stream.Record{"ipv4.len": stream.Int(60)}),
		pkt(0.3, stream.Record{"ipv4.len": stream.Int(80)}),
		pkt(1.5, stream.Record{"ipv4.len": stream.Int(40)}),
	)

	require.Len(t, sink.records, 1)
	assert.Equal(t, stream.Record{"eid": stream.Int(0), "pkts": stream.Int(3)}, sink.records[0])
}

func TestDistinctSourcesPerWindow(t *testing.T) {
	sink := &capture{}
	q := DistinctSources(sink)

	s1, s2, s3 := ipv4(t, "10.0.0.1"), ipv4(t, "10.0.0.2"), ipv4(t, "10.0.0.3")
	feed(t, q,
		pkt(0.1, stream.Record{"ipv4.src": s1}),
		pkt(0.2, stream.Record{"ipv4.src": s1}),
		pkt(0.3, stream.Record{"ipv4.src": s2}),
		pkt(1.5, stream.Record{"ipv4.src": s3}),
	)
	require.NoError(t, q.Entries[0].Reset(stream.Record{"tuples": stream.Int(4)}))

	require.Len(t, sink.records, 2)
	assert.Equal(t, stream.Record{"eid": stream.Int(0), "srcs": stream.Int(2)}, sink.records[0])
	// The producer's bookkeeping fields never reach the flush: the
	// window operator rewrites the final reset to just the window id.
	assert.Equal(t, stream.Record{"eid": stream.Int(1), "srcs": stream.Int(1)}, sink.records[1])
}

func TestTCPNewConnectionsThreshold(t *testing.T) {
	sink := &capture{}
	q := tcpNewConnections(2, 1.0, sink)

	victim := ipv4(t, "10.0.0.80")
	other := ipv4(t, "10.0.0.81")
	syn := func(ts float64, dst stream.Value) stream.Record {
		return pkt(ts, stream.Record{
			"ipv4.proto": stream.Int(6),
			"l4.flags":   stream.Int(2),
			"ipv4.dst":   dst,
		})
	}

	feed(t, q,
		syn(0.1, victim),
		syn(0.2, victim),
		syn(0.3, victim),
		syn(0.4, other),
		// Established traffic is not a connection attempt.
		pkt(0.5, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(16), "ipv4.dst": victim}),
		pkt(1.5, stream.Record{"ipv4.proto": stream.Int(17)}),
	)

	require.Len(t, sink.records, 1)
	assert.Equal(t, stream.Record{
		"ipv4.dst": victim,
		"eid":      stream.Int(0),
		"cons":     stream.Int(3),
	}, sink.records[0])
}

func TestSSHBruteForceCountsDistinctSources(t *testing.T) {
	sink := &capture{}
	q := sshBruteForce(2, 1.0, sink)

	server := ipv4(t, "10.0.0.22")
	probe := func(ts float64, src string) stream.Record {
		return pkt(ts, stream.Record{
			"ipv4.proto": stream.Int(6),
			"l4.dport":   stream.Int(22),
			"ipv4.src":   ipv4(t, src),
			"ipv4.dst":   server,
			"ipv4.len":   stream.Int(60),
		})
	}

	feed(t, q,
		probe(0.1, "10.0.1.1"),
		probe(0.2, "10.0.1.1"), // duplicate source collapses
		probe(0.3, "10.0.1.2"),
		probe(0.4, "10.0.1.3"),
		pkt(1.5, stream.Record{"ipv4.proto": stream.Int(17)}),
	)

	require.Len(t, sink.records, 1)
	assert.Equal(t, stream.Int(3), sink.records[0]["srcs"])
	assert.Equal(t, server, sink.records[0]["ipv4.dst"])
}

func TestPortScanThreshold(t *testing.T) {
	sink := &capture{}
	q := portScan(3, 1.0, sink)

	scanner := ipv4(t, "10.0.9.9")
	for port := int64(1); port <= 4; port++ {
		feed(t, q, pkt(0.1, stream.Record{
			"ipv4.src": scanner,
			"l4.dport": stream.Int(port),
		}))
	}
	feed(t, q, pkt(1.5, stream.Record{"ipv4.src": scanner, "l4.dport": stream.Int(1)}))

	require.Len(t, sink.records, 1)
	assert.Equal(t, stream.Int(4), sink.records[0]["ports"])
	assert.Equal(t, scanner, sink.records[0]["ipv4.src"])
}

func TestSynFloodEmitsImbalance(t *testing.T) {
	sink := &capture{}
	q := synFlood(3, 1.0, sink)
	require.Len(t, q.Entries, 3)

	host := ipv4(t, "10.0.0.9")
	var packets []stream.Record
	// Five connection attempts against the host.
	for i := 0; i < 5; i++ {
		packets = append(packets, pkt(0.1, stream.Record{
			"ipv4.proto": stream.Int(6),
			"l4.flags":   stream.Int(2),
			"ipv4.dst":   host,
		}))
	}
	// Two handshake replies from it, one completed handshake.
	for i := 0; i < 2; i++ {
		packets = append(packets, pkt(0.2, stream.Record{
			"ipv4.proto": stream.Int(6),
			"l4.flags":   stream.Int(18),
			"ipv4.src":   host,
		}))
	}
	packets = append(packets, pkt(0.3, stream.Record{
		"ipv4.proto": stream.Int(6),
		"l4.flags":   stream.Int(16),
		"ipv4.dst":   host,
	}))
	// Window boundary.
	packets = append(packets, pkt(1.5, stream.Record{"ipv4.proto": stream.Int(17)}))

	feed(t, q, packets...)

	require.Len(t, sink.records, 1)
	got := sink.records[0]
	assert.Equal(t, host, got["host"])
	assert.Equal(t, stream.Int(0), got["eid"])
	assert.Equal(t, stream.Int(7), got["syns+synacks"])
	assert.Equal(t, stream.Int(1), got["acks"])
	assert.Equal(t, stream.Int(6), got["syns+synacks-acks"])
}

func TestSynFloodBelowThresholdStaysQuiet(t *testing.T) {
	sink := &capture{}
	q := synFlood(10, 1.0, sink)

	host := ipv4(t, "10.0.0.9")
	feed(t, q,
		pkt(0.1, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(2), "ipv4.dst": host}),
		pkt(0.2, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(18), "ipv4.src": host}),
		pkt(0.3, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(16), "ipv4.dst": host}),
		pkt(1.5, stream.Record{"ipv4.proto": stream.Int(17)}),
	)

	assert.Empty(t, sink.records)
}

func TestCompletedFlowsImbalance(t *testing.T) {
	sink := &capture{}
	q := completedFlows(1, 30.0, sink)
	require.Len(t, q.Entries, 2)

	host := ipv4(t, "10.0.0.5")
	feed(t, q,
		pkt(1.0, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(2), "ipv4.dst": host}),
		pkt(2.0, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(2), "ipv4.dst": host}),
		pkt(3.0, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(2), "ipv4.dst": host}),
		// FIN+ACK still counts as a finished flow.
		pkt(4.0, stream.Record{"ipv4.proto": stream.Int(6), "l4.flags": stream.Int(17), "ipv4.src": host}),
		pkt(31.0, stream.Record{"ipv4.proto": stream.Int(17)}),
	)

	require.Len(t, sink.records, 1)
	assert.Equal(t, host, sink.records[0]["host"])
	assert.Equal(t, stream.Int(2), sink.records[0]["diff"])
}

func TestSlowlorisBytesPerConnection(t *testing.T) {
	sink := &capture{}
	q := slowloris(2, 10, 5, 1.0, sink)
	require.Len(t, q.Entries, 2)

	victim := ipv4(t, "10.0.0.80")
	conn := func(ts float64, src string, sport, length int64) stream.Record {
		return pkt(ts, stream.Record{
			"ipv4.proto": stream.Int(6),
			"ipv4.src":   ipv4(t, src),
			"ipv4.dst":   victim,
			"l4.sport":   stream.Int(sport),
			"ipv4.len":   stream.Int(length),
		})
	}

	feed(t, q,
		// The first packet only arms the byte sum.
		conn(0.1, "10.0.1.1", 1001, 100),
		conn(0.2, "10.0.1.2", 1002, 6),
		conn(0.3, "10.0.1.3", 1003, 6),
		pkt(1.5, stream.Record{"ipv4.proto": stream.Int(17)}),
	)

	require.Len(t, sink.records, 1)
	got := sink.records[0]
	assert.Equal(t, victim, got["ipv4.dst"])
	assert.Equal(t, stream.Int(3), got["n_conns"])
	assert.Equal(t, stream.Int(12), got["n_bytes"])
	assert.Equal(t, stream.Int(4), got["bytes_per_conn"])
}
