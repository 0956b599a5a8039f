// A minimal end-to-end run: one catalog query fed by hand, results
// dumped to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/mireska/sift/queries"
	"github.com/mireska/sift/sinks"
	"github.com/mireska/sift/stream"
)

func main() {
	// Count packets per one second window.
	q, err := queries.Build("count_pkts", sinks.NewDumpSink(os.Stdout, false))
	if err != nil {
		panic(err)
	}
	entry := q.Entries[0]

	// Three packets land in the first window, one in the second.
	for i, ts := range []float64{0.1, 0.4, 0.9, 1.6} {
		rec := stream.Record{
			stream.TimeKey: stream.Float(ts),
			"ipv4.src":     mustIP("10.0.0.1"),
			"ipv4.dst":     mustIP("10.0.0.2"),
			"l4.sport":     stream.Int(int64(40000 + i)),
			"l4.dport":     stream.Int(80),
		}
		if err := entry.Next(rec); err != nil {
			panic(err)
		}
	}

	// End of stream flushes the open window.
	if err := entry.Reset(stream.Record{}); err != nil {
		panic(err)
	}
	fmt.Println("done")
}

func mustIP(s string) stream.Value {
	v, err := stream.ParseIPv4(s)
	if err != nil {
		panic(err)
	}
	return v
}
