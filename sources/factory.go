package sources

import (
	"fmt"

	"github.com/mireska/sift/internal/archive"
	"github.com/mireska/sift/stream"
)

// Config selects and parameterizes a source. Kind picks the
// implementation; the remaining fields apply to the kinds that use
// them.
type Config struct {
	Kind       string   `koanf:"kind"`
	Path       string   `koanf:"path"`
	Brokers    []string `koanf:"brokers"`
	Topic      string   `koanf:"topic"`
	Group      string   `koanf:"group"`
	URL        string   `koanf:"url"`
	Subject    string   `koanf:"subject"`
	ArchiveDir string   `koanf:"archive_dir"`
	EidKey     string   `koanf:"eid_key"`
}

// New builds the source described by cfg.
func New(cfg *Config) (Source, error) {
	switch cfg.Kind {
	case "csv":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sources: csv needs a path")
		}
		return NewCSVSource(cfg.Path), nil
	case "flow-csv":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sources: flow-csv needs a path")
		}
		eidKey := cfg.EidKey
		if eidKey == "" {
			eidKey = stream.DefaultEidKey
		}
		return NewFlowCSVSource(cfg.Path, eidKey), nil
	case "kafka":
		if len(cfg.Brokers) == 0 || cfg.Topic == "" {
			return nil, fmt.Errorf("sources: kafka needs brokers and a topic")
		}
		return NewKafkaSource(cfg.Brokers, cfg.Topic, cfg.Group)
	case "nats":
		if cfg.URL == "" || cfg.Subject == "" {
			return nil, fmt.Errorf("sources: nats needs a url and a subject")
		}
		return NewNATSSource(cfg.URL, cfg.Subject)
	case "replay":
		if cfg.ArchiveDir == "" {
			return nil, fmt.Errorf("sources: replay needs an archive dir")
		}
		ar, err := archive.Open(&archive.Config{Dir: cfg.ArchiveDir})
		if err != nil {
			return nil, err
		}
		return NewReplaySource(ar), nil
	default:
		return nil, fmt.Errorf("sources: unknown kind %q", cfg.Kind)
	}
}
