package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rkot1/rtt-viewer/internal/aggregator"
	"github.com/rkot1/rtt-viewer/internal/feed"
	"github.com/rkot1/rtt-viewer/internal/hub"
	"github.com/rkot1/rtt-viewer/internal/ingest"
	"github.com/rkot1/rtt-viewer/internal/profile"
	"github.com/rkot1/rtt-viewer/internal/server"
	"github.com/rkot1/rtt-viewer/internal/watcher"
)

var (
	serveAddr    string
	serveMock    bool
	serveFollow  []string
	profilesPath string
	serveFromTop bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live web dashboard",
	Long: `Start the web dashboard. Entries arrive from a followed capture file or
the built-in mock feed and stream to connected browsers over WebSocket.

Examples:
  rtt-viewer serve --mock
  rtt-viewer serve --follow capture.rtt --addr :9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8970)")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "generate a mock device feed")
	serveCmd.Flags().StringSliceVar(&serveFollow, "follow", nil, "capture files or glob patterns to follow")
	serveCmd.Flags().BoolVar(&serveFromTop, "from-start", false, "replay existing file contents before tailing")
	serveCmd.Flags().StringVar(&profilesPath, "profiles", "", "profile store path (default per-user config dir)")

	viper.SetDefault("addr", ":8970")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	addr := serveAddr
	if addr == "" {
		addr = viper.GetString("addr")
	}
	ppath := profilesPath
	if ppath == "" {
		ppath = profile.DefaultPath()
	}

	h := hub.New(logger)
	coord := ingest.New(nil, h, logger)
	agg := aggregator.New(h.Subscribe(), h.Dropped)
	go agg.Start(ctx)

	if serveMock {
		mock := feed.NewMock()
		go mock.Start(ctx)
		go pump(coord, mock.Lines())
	}
	if len(serveFollow) > 0 {
		w, err := watcher.New(serveFollow, logger)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		follower := feed.NewFollower(w, serveFromTop, logger)
		go w.Start(ctx)
		go follower.Start(ctx)
		go pump(coord, follower.Lines())
	}

	srv := server.New(coord, agg, profile.NewStore(ppath), addr, logger)
	return srv.Start()
}

// pump drains a feed into the coordinator.
func pump(coord *ingest.Coordinator, lines <-chan feed.Line) {
	for line := range lines {
		coord.AppendFeedLine(line.Text, line.Terminal)
	}
}
