package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

// initFlags loads config files first and lets command line arguments
// override them.
func initFlags(ko *koanf.Koanf) {
	f := flag.NewFlagSet("sift", flag.ContinueOnError)
	f.Usage = func() {
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	f.StringSlice("config", nil, "path to one or more config files (will be merged in order)")
	f.StringSlice("queries", []string{"ident"}, "catalog queries to run, or \"all\"")

	f.String("source", "csv", "input kind: csv, flow-csv, kafka, nats or replay")
	f.String("input", "-", "csv input path, \"-\" for stdin")
	f.StringSlice("brokers", []string{"localhost:9092"}, "kafka broker addresses")
	f.String("topic", "sift.records", "kafka topic to consume or produce")
	f.String("group", "", "kafka consumer group")
	f.String("nats-url", "nats://127.0.0.1:4222", "nats server url")
	f.String("subject", "sift.records", "nats subject")
	f.String("archive-dir", "", "capture archive to replay from")
	f.String("eid-key", "eid", "window id field on pre-windowed input")

	f.String("sink", "dump", "output kind: dump, csv, strict-csv, kafka, nats or elastic")
	f.String("out", "-", "output path for file sinks, \"-\" for stdout")
	f.Bool("show-resets", false, "mark window boundaries in dump output")
	f.StringSlice("es-addresses", []string{"http://localhost:9200"}, "elasticsearch addresses")
	f.String("es-index", "sift-alerts", "elasticsearch index for alert documents")

	f.String("capture-dir", "", "record every result envelope into this archive")
	f.Bool("meter", false, "print a per-window record count for every query")
	f.String("server", "", "ops server listen address, empty disables it")

	f.Bool("debug", false, "log at debug level with a pretty console writer")
	f.String("log-file", "", "also write logs to this file")
	f.Bool("version", false, "show current version of the build")

	if err := f.Parse(os.Args[1:]); err != nil {
		log.Fatal().Msgf("error loading flags: %v", err)
	}

	configs, _ := f.GetStringSlice("config")
	for _, path := range configs {
		var parser koanf.Parser
		switch path[strings.LastIndex(path, ".")+1:] {
		case "yaml", "yml":
			parser = yaml.Parser()
		case "json":
			parser = json.Parser()
		default:
			log.Fatal().Msgf("unsupported config extension on %s", path)
		}
		if err := ko.Load(file.Provider(path), parser); err != nil {
			log.Fatal().Msgf("error reading config %s: %v", path, err)
		}
	}

	if err := ko.Load(posflag.Provider(f, ".", ko), nil); err != nil {
		log.Fatal().Msgf("error reading flag config: %v", err)
	}
}
