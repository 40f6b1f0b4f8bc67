package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/rvf"
	"github.com/rvflabs/rvf-go/pkg/sender"
)

var opts struct {
	addr          string
	transport     string
	fps           int
	frames        int
	linesPerChunk int
	lossRate      float64
	seed          int64
	chunkDelay    time.Duration
	verbose       bool
}

var rootCmd = &cobra.Command{
	Use:   "rvfsend",
	Short: "Synthetic video stream generator",
	Long: `rvfsend streams a synthetic moving-gradient test pattern as chunked
grayscale frames over UDP, TCP or QUIC. It exists to exercise rvfd and
the reassembly library: chunk pacing, loss injection and sequence
numbering are all configurable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&opts.addr, "addr", "a", "127.0.0.1:50070", "destination address")
	f.StringVarP(&opts.transport, "transport", "t", "udp", "transport: udp, tcp or quic")
	f.IntVar(&opts.fps, "fps", 25, "frames per second")
	f.IntVarP(&opts.frames, "frames", "n", 0, "number of frames to send (0 = until interrupted)")
	f.IntVar(&opts.linesPerChunk, "lines-per-chunk", sender.DefaultLinesPerChunk, "scanlines per chunk")
	f.Float64Var(&opts.lossRate, "loss", 0, "probability of dropping each chunk (0..1)")
	f.Int64Var(&opts.seed, "seed", 0, "RNG seed for loss injection (0 = time-based)")
	f.DurationVar(&opts.chunkDelay, "chunk-delay", 0, "pause between chunks")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openChannel() (channel.DatagramChannel, error) {
	switch opts.transport {
	case "udp":
		return channel.NewUDPChannel(channel.UDPChannelConfig{Address: opts.addr})
	case "tcp":
		return channel.NewTCPChannel(channel.TCPChannelConfig{
			Address:        opts.addr,
			ReconnectDelay: time.Second,
		})
	case "quic":
		return channel.NewQUICChannel(channel.QUICChannelConfig{
			Address:        opts.addr,
			ReconnectDelay: time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown transport %q", opts.transport)
	}
}

func run() error {
	if opts.fps < 1 {
		return fmt.Errorf("fps must be at least 1")
	}
	if opts.lossRate < 0 || opts.lossRate >= 1 {
		return fmt.Errorf("loss must be in [0, 1)")
	}

	level := rvf.LevelInfo
	if opts.verbose {
		level = rvf.LevelDebug
	}
	log := rvf.NewLogger(level)
	rvf.SetDefaultLogger(log)

	ch, err := openChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	snd := sender.NewSender(ch, sender.SenderConfig{
		LinesPerChunk: opts.linesPerChunk,
		ChunkDelay:    opts.chunkDelay,
		LossRate:      opts.lossRate,
		Seed:          opts.seed,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	log.Info("Streaming to %s/%s at %d fps", opts.transport, opts.addr, opts.fps)

	ticker := time.NewTicker(time.Second / time.Duration(opts.fps))
	defer ticker.Stop()

	tick := 0
	for opts.frames == 0 || tick < opts.frames {
		select {
		case <-ctx.Done():
			printStats(snd)
			return nil
		case <-ticker.C:
		}

		if err := snd.SendFrame(ctx, sender.TestPattern(tick)); err != nil {
			if ctx.Err() != nil {
				printStats(snd)
				return nil
			}
			// Transient write failures (peer not up yet, reconnect in
			// progress) should not kill a soak run.
			log.Warn("Send frame %d: %v", tick, err)
		}
		tick++
	}

	printStats(snd)
	return nil
}

func printStats(snd *sender.Sender) {
	fmt.Printf("frames=%d chunks=%d dropped=%d\n",
		snd.FramesSent(), snd.ChunksSent(), snd.ChunksDropped())
}
