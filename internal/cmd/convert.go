package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkot1/rtt-viewer/internal/export"
	"github.com/rkot1/rtt-viewer/internal/parser"
)

var (
	convertInFormat  string
	convertOutFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a log file between JSON, CSV and plain text",
	Long: `Convert a previously exported or captured log file to another format.
Formats are inferred from file extensions unless overridden.

Examples:
  rtt-viewer convert capture.txt capture.json
  rtt-viewer convert session.json session.csv
  rtt-viewer convert dump.bin out.csv --in-format text`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertInFormat, "in-format", "", "input format: json, csv, text")
	convertCmd.Flags().StringVar(&convertOutFormat, "out-format", "", "output format: json, csv, text")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inPath, outPath := args[0], args[1]

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	inFormat := parser.Format(convertInFormat)
	if inFormat == "" {
		inFormat = parser.DetectByExtension(inPath)
	}
	outFormat := parser.Format(convertOutFormat)
	if outFormat == "" {
		outFormat = parser.DetectByExtension(outPath)
	}

	entries, err := parser.Parse(inFormat, string(data))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s parsed to zero entries", inPath)
	}

	out, err := export.Encode(outFormat, entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %d entries to %s\n", len(entries), outPath)
	return nil
}
