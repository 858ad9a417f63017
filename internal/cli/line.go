package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/estudio/internal/odds"
)

// lineCmd groups the handicap line utilities
var lineCmd = &cobra.Command{
	Use:   "line",
	Short: "Parse, format and bucket raw handicap lines",
	Long: `Line exposes the handicap primitives used by the analysis.

Negative lines are read as values, not flags, so no "--" is needed.

Example:
  estudio line format -0/0.5 0.3
  estudio line format --spreadsheet -0.75
  estudio line bucket -1.25
  estudio line parse 0.5/1 -0/0.5`,
}

var lineFormatCmd = &cobra.Command{
	Use:                "format [--spreadsheet] <raw>...",
	Short:              "Print the canonical display form of each line",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var sheet bool
		args, help := lineArgs(args, "--spreadsheet", &sheet)
		if help {
			return cmd.Help()
		}
		if len(args) == 0 {
			return fmt.Errorf("requires at least 1 line")
		}
		var opts []odds.FormatOption
		if sheet {
			opts = append(opts, odds.WithSpreadsheet())
		}
		for _, raw := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, odds.Format(raw, opts...))
		}
		return nil
	},
}

var lineBucketCmd = &cobra.Command{
	Use:   "bucket <raw>...",
	Short:              "Print the half-line bucket of each line",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		args, help := lineArgs(args, "", nil)
		if help {
			return cmd.Help()
		}
		if len(args) == 0 {
			return fmt.Errorf("requires at least 1 line")
		}
		for _, raw := range args {
			bucket, ok := odds.Bucket(raw)
			if !ok {
				bucket = odds.Placeholder
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, bucket)
		}
		return nil
	},
}

var lineParseCmd = &cobra.Command{
	Use:   "parse <raw>...",
	Short:              "Print the numeric value of each line",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		args, help := lineArgs(args, "", nil)
		if help {
			return cmd.Help()
		}
		if len(args) == 0 {
			return fmt.Errorf("requires at least 1 line")
		}
		for _, raw := range args {
			value, ok := odds.Parse(raw)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, odds.Placeholder)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", raw, value)
		}
		return nil
	},
}

// lineArgs splits the raw arguments of a line command. Flag parsing is
// off because "-0.75" must reach the command as a line. A bare "--" is
// dropped, and boolFlag, when present, sets *target.
func lineArgs(args []string, boolFlag string, target *bool) (lines []string, help bool) {
	for _, a := range args {
		switch {
		case a == "-h" || a == "--help":
			return nil, true
		case a == "--":
		case boolFlag != "" && a == boolFlag:
			*target = true
		default:
			lines = append(lines, a)
		}
	}
	return lines, false
}

func init() {
	rootCmd.AddCommand(lineCmd)
	lineCmd.AddCommand(lineFormatCmd, lineBucketCmd, lineParseCmd)
}
