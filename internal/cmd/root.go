// Package cmd wires the CLI: serve (web dashboard), follow (terminal
// tailing), mock (demo feed), convert (format conversion), elf (firmware
// inspection).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "rtt-viewer",
	Short: "SEGGER RTT log viewer and search engine",
	Long: `rtt-viewer ingests diagnostic log lines from embedded devices (SEGGER RTT
captures, Zephyr shell output, exported log files), normalizes them, and
provides live filtering and search through a terminal or a web dashboard.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.rtt-viewer.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".rtt-viewer")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RTT_VIEWER")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger. Console encoding keeps stderr
// readable next to rendered log lines.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
