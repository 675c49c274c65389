package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkot1/rtt-viewer/internal/elfinfo"
)

var elfCmd = &cobra.Command{
	Use:   "elf <firmware.elf>",
	Short: "Extract the RTT control block address from a firmware image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := elfinfo.Inspect(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("rtt_address: %s\n", info.RTTAddress)
		if info.ChipHint != "" {
			fmt.Printf("chip_hint:   %s\n", info.ChipHint)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(elfCmd)
}
