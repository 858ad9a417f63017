package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/estudio/internal/listing"
	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

var (
	listFile     string
	listHandicap string
	listGoalLine string
	listOffset   int
	listLimit    int
	listFinished bool
	listOptions  bool
	listJSON     bool
	spreadsheet  bool
)

// matchesCmd represents the matches command
var matchesCmd = &cobra.Command{
	Use:   "matches [match-id]",
	Short: "List upcoming or finished matches by handicap and goal line",
	Long: `Matches reads the listings document and prints a page of upcoming
(earliest first) or finished (latest first) matches.

A handicap filter of 2 or more selects that line and every larger line
of the same sign; a goal line filter of 4 or more selects that line and
above. Smaller filters match exactly.

Example:
  estudio matches --handicap -0.75
  estudio matches --finished --goal-line 2.5 --limit 20
  estudio matches --options
  estudio matches 2401`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatches,
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	matchesCmd.Flags().StringVar(&listFile, "file", "", "listings JSON file (default: listing.data_file)")
	matchesCmd.Flags().StringVar(&listHandicap, "handicap", "", "handicap filter")
	matchesCmd.Flags().StringVar(&listGoalLine, "goal-line", "", "goal line filter")
	matchesCmd.Flags().IntVar(&listOffset, "offset", 0, "entries to skip")
	matchesCmd.Flags().IntVar(&listLimit, "limit", 0, "page size (default: listing.default_limit, capped at listing.max_limit)")
	matchesCmd.Flags().BoolVar(&listFinished, "finished", false, "list finished matches instead of upcoming ones")
	matchesCmd.Flags().BoolVar(&listOptions, "options", false, "print the available handicap and goal line filters")
	matchesCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
	matchesCmd.Flags().BoolVar(&spreadsheet, "spreadsheet", false, "format handicaps for spreadsheet paste ('0,5)")
}

func runMatches(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if listFile != "" {
		cfg.Listing.DataFile = listFile
	}
	if spreadsheet {
		cfg.Output.Spreadsheet = true
	}

	store := listing.NewStore(cfg.Listing.DataFile, log).WithLimits(cfg.Listing.DefaultLimit, cfg.Listing.MaxLimit)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		entry, ok := store.Find(args[0])
		if !ok {
			return fmt.Errorf("match %s not found in %s", args[0], cfg.Listing.DataFile)
		}
		return printEntries(out, []model.ListingEntry{entry}, cfg.Output.Spreadsheet)
	}

	if listOptions {
		return printOptions(out, store.Options())
	}

	q := listing.Query{
		Handicap: listHandicap,
		GoalLine: listGoalLine,
		Offset:   listOffset,
		Limit:    listLimit,
	}
	var entries []model.ListingEntry
	if listFinished {
		entries = store.Finished(q)
	} else {
		entries = store.Upcoming(q)
	}

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return printEntries(out, entries, cfg.Output.Spreadsheet)
}

func printEntries(w io.Writer, entries []model.ListingEntry, spreadsheet bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No matches found")
		return err
	}

	var opts []odds.FormatOption
	if spreadsheet {
		opts = append(opts, odds.WithSpreadsheet())
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tCOMPETITION\tMATCH\tSCORE\tAH\tGOALS")
	for _, e := range entries {
		goals, ok := listing.NormalizeGoalLine(listing.GoalLineOf(e))
		if !ok {
			goals = odds.Placeholder
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s vs %s\t%s\t%s\t%s\n",
			e.ID, dash(e.Time), dash(e.Competition), e.HomeTeam, e.AwayTeam, dash(e.Score),
			odds.Format(e.Handicap, opts...), goals)
	}
	return tw.Flush()
}

func printOptions(w io.Writer, o listing.Options) error {
	_, err := fmt.Fprintf(w, "Handicaps:  %s\nGoal lines: %s\n", joinOrDash(o.Handicaps), joinOrDash(o.GoalLines))
	return err
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return odds.Placeholder
	}
	return s
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return odds.Placeholder
	}
	return strings.Join(values, ", ")
}
