package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rvflabs/rvf-go/pkg/protocol"
)

// StreamConfig describes one ingest session
type StreamConfig struct {
	Name      string `toml:"name"`
	Transport string `toml:"transport"` // "udp", "tcp" or "quic"
	Listen    string `toml:"listen"`    // "host:port"
}

// HTTPConfig describes the observability surface
type HTTPConfig struct {
	Listen string `toml:"listen"`
}

// ExportConfig describes on-disk frame export
type ExportConfig struct {
	SnapshotDir   string `toml:"snapshot_dir"`   // empty disables PNG snapshots
	SnapshotEvery int    `toml:"snapshot_every"` // write every Nth frame
	ReportPath    string `toml:"report_path"`    // empty disables the CSV session report
}

// Config is the top-level rvfd configuration
type Config struct {
	LogLevel        string         `toml:"log_level"`
	LivenessTimeout duration       `toml:"liveness_timeout"`
	Streams         []StreamConfig `toml:"stream"`
	HTTP            HTTPConfig     `toml:"http"`
	Export          ExportConfig   `toml:"export"`
}

// duration lets TOML carry values like "5s"
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func defaultConfig() Config {
	return Config{
		LogLevel:        "info",
		LivenessTimeout: duration{5 * time.Second},
		Streams: []StreamConfig{
			{
				Name:      "default",
				Transport: "udp",
				Listen:    fmt.Sprintf(":%d", protocol.DefaultPort),
			},
		},
		HTTP: HTTPConfig{
			Listen: ":9270",
		},
		Export: ExportConfig{
			SnapshotEvery: 1,
		},
	}
}

// loadConfig reads the TOML file at path, or returns defaults when
// path is empty.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	// Start from an empty stream list so a configured file fully
	// replaces the default session.
	config.Streams = nil
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if len(config.Streams) == 0 {
		config.Streams = defaultConfig().Streams
	}

	return config, config.validate()
}

func (c Config) validate() error {
	seen := make(map[string]bool)
	for _, stream := range c.Streams {
		if stream.Name == "" {
			return fmt.Errorf("stream is missing a name")
		}
		if seen[stream.Name] {
			return fmt.Errorf("duplicate stream name %q", stream.Name)
		}
		seen[stream.Name] = true

		switch stream.Transport {
		case "udp", "tcp", "quic":
		default:
			return fmt.Errorf("stream %q: unknown transport %q", stream.Name, stream.Transport)
		}
		if stream.Listen == "" {
			return fmt.Errorf("stream %q: listen address is required", stream.Name)
		}
	}
	if c.LivenessTimeout.Duration <= 0 {
		return fmt.Errorf("liveness_timeout must be positive")
	}
	if c.Export.SnapshotDir != "" && c.Export.SnapshotEvery < 1 {
		return fmt.Errorf("snapshot_every must be at least 1")
	}
	return nil
}
