package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/export"
	"github.com/rvflabs/rvf-go/pkg/metrics"
	"github.com/rvflabs/rvf-go/pkg/reassembly"
	"github.com/rvflabs/rvf-go/pkg/receiver"
	"github.com/rvflabs/rvf-go/pkg/rvf"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rvfd",
	Short: "Video stream ingest daemon",
	Long: `rvfd receives chunked grayscale video streams over UDP, TCP or QUIC,
reassembles them into frames and exposes the result over HTTP:
Prometheus metrics, a JSON status endpoint and a WebSocket frame preview.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(configPath)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseLogLevel(s string) (rvf.LogLevel, error) {
	switch s {
	case "debug":
		return rvf.LevelDebug, nil
	case "info", "":
		return rvf.LevelInfo, nil
	case "warn":
		return rvf.LevelWarn, nil
	case "error":
		return rvf.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func openChannel(stream StreamConfig) (channel.DatagramChannel, error) {
	switch stream.Transport {
	case "udp":
		return channel.NewUDPChannel(channel.UDPChannelConfig{
			Address:  stream.Listen,
			IsServer: true,
		})
	case "tcp":
		return channel.NewTCPChannel(channel.TCPChannelConfig{
			Address:  stream.Listen,
			IsServer: true,
		})
	case "quic":
		return channel.NewQUICChannel(channel.QUICChannelConfig{
			Address:  stream.Listen,
			IsServer: true,
		})
	default:
		return nil, fmt.Errorf("unknown transport %q", stream.Transport)
	}
}

func run(configPath string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level, err := parseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}
	log := rvf.NewLogger(level)
	rvf.SetDefaultLogger(log)

	manager := rvf.NewManagerWithLogger(log)
	defer manager.Shutdown()

	metrics.RegisterMetrics()
	prometheus.MustRegister(metrics.NewSessionCollector(manager))

	var exportWG sync.WaitGroup
	exportCtx, stopExports := context.WithCancel(context.Background())
	defer stopExports()

	for _, stream := range config.Streams {
		ch, err := openChannel(stream)
		if err != nil {
			return fmt.Errorf("stream %q: %w", stream.Name, err)
		}

		session, err := manager.AddSession(stream.Name, ch, receiver.ReceiverConfig{
			LivenessTimeout: config.LivenessTimeout.Duration,
			Logger:          log,
		})
		if err != nil {
			ch.Close()
			return fmt.Errorf("stream %q: %w", stream.Name, err)
		}
		log.Info("Listening for stream %q on %s/%s", stream.Name, stream.Transport, stream.Listen)

		exportWG.Add(1)
		go func(session *rvf.Session) {
			defer exportWG.Done()
			runExports(exportCtx, session, config.Export, log)
		}(session)
	}

	server := &http.Server{
		Addr:              config.HTTP.Listen,
		Handler:           newRouter(manager, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP listening on %s", config.HTTP.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown: %v", err)
	}

	stopExports()
	exportWG.Wait()
	return nil
}

// runExports consumes frames from a session subscription, records
// per-frame metrics and drives the configured PNG snapshots and CSV
// session report. Returns once ctx is cancelled, flushing the report
// if one was requested.
func runExports(ctx context.Context, session *rvf.Session, config ExportConfig, log rvf.Logger) {
	sub := session.Subscribe(rvf.DefaultSubscriptionDepth)
	defer sub.Cancel()

	var snapshots *export.SnapshotWriter
	if config.SnapshotDir != "" {
		dir := filepath.Join(config.SnapshotDir, session.Name())
		var err error
		snapshots, err = export.NewSnapshotWriter(dir)
		if err != nil {
			log.Error("Snapshot dir for session %s: %v", session.Name(), err)
		}
	}

	var report *export.SessionReport
	if config.ReportPath != "" {
		report = export.NewSessionReport()
		defer func() {
			path := reportPath(config.ReportPath, session.Name())
			if err := report.WriteFile(path); err != nil {
				log.Error("Session report for %s: %v", session.Name(), err)
			} else {
				log.Info("Wrote session report for %s to %s (%d frames)",
					session.Name(), path, report.FrameCount())
			}
		}()
	}

	frameCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-sub.Frames():
			if !ok {
				return
			}
			frame := item.(*reassembly.Frame)
			frameCount++
			metrics.ObserveFrame(frame)

			if report != nil {
				report.Record(frame)
			}
			if snapshots != nil && frameCount%config.SnapshotEvery == 0 {
				if _, err := snapshots.Write(frame); err != nil {
					log.Warn("Snapshot for session %s: %v", session.Name(), err)
				}
			}
		}
	}
}

// reportPath inserts the session name before the file extension, so
// multiple sessions sharing one configured path do not clobber each
// other.
func reportPath(base, session string) string {
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)] + "_" + session + ext
}
