package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rkot1/rtt-viewer/internal/feed"
	"github.com/rkot1/rtt-viewer/internal/ingest"
	"github.com/rkot1/rtt-viewer/internal/output"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Render the built-in mock device feed to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		coord := ingest.New(output.NewTermRenderer(), nil, logger)

		mock := feed.NewMock()
		go mock.Start(ctx)
		for line := range mock.Lines() {
			coord.AppendFeedLine(line.Text, line.Terminal)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)
}
