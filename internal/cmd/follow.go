package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rkot1/rtt-viewer/internal/feed"
	"github.com/rkot1/rtt-viewer/internal/ingest"
	"github.com/rkot1/rtt-viewer/internal/model"
	"github.com/rkot1/rtt-viewer/internal/output"
	"github.com/rkot1/rtt-viewer/internal/watcher"
)

var (
	followFromStart bool
	followLevels    string
	followTags      string
	followExclude   string
)

var followCmd = &cobra.Command{
	Use:   "follow [patterns...]",
	Short: "Follow RTT capture files and render new entries",
	Long: `Follow one or more capture files (or glob patterns) and stream decoded,
filtered log entries to the terminal.

Examples:
  rtt-viewer follow capture.rtt
  rtt-viewer follow "captures/**/*.rtt" --from-start
  rtt-viewer follow capture.rtt --levels error,warn --exclude-tags battery`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFollow,
}

func init() {
	followCmd.Flags().BoolVar(&followFromStart, "from-start", false, "replay existing file contents before tailing")
	followCmd.Flags().StringVar(&followLevels, "levels", "", "show only these levels (comma-separated)")
	followCmd.Flags().StringVar(&followTags, "tags", "", "show only these tags (comma-separated)")
	followCmd.Flags().StringVar(&followExclude, "exclude-tags", "", "hide these tags (comma-separated)")
	rootCmd.AddCommand(followCmd)
}

func runFollow(cmd *cobra.Command, args []string) error {
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

	w, err := watcher.New(args, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if len(w.Paths()) == 0 {
		fmt.Fprintf(os.Stderr, "no files match yet, waiting for %v\n", args)
	}
	for _, p := range w.Paths() {
		fmt.Fprintf(os.Stderr, "following %s\n", p)
	}

	coord := ingest.New(output.NewTermRenderer(), nil, logger)
	applyFilterFlags(coord)

	follower := feed.NewFollower(w, followFromStart, logger)
	go w.Start(ctx)
	go follower.Start(ctx)

	for line := range follower.Lines() {
		coord.AppendFeedLine(line.Text, line.Terminal)
	}
	return nil
}

// applyFilterFlags maps the CLI filter flags onto the session filter state.
func applyFilterFlags(coord *ingest.Coordinator) {
	if followLevels != "" {
		want := make(map[string]bool)
		for _, l := range strings.Split(followLevels, ",") {
			want[model.ExpandLevel(l)] = true
		}
		for _, l := range model.Levels() {
			if !want[l] {
				coord.ToggleLevel(l)
			}
		}
	}
	for _, t := range splitList(followTags) {
		coord.ToggleTag(t)
	}
	for _, t := range splitList(followExclude) {
		coord.ToggleExcludeTag(t)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
