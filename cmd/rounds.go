package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
	"github.com/TuckerBrewer12/ScanScorecards/internal/store"
)

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "Inspect saved rounds",
	Long:  "Commands for listing and viewing rounds extracted from scorecards.",
}

// -- rounds list --

var roundsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rounds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		user, _ := cmd.Flags().GetString("user")
		courseID, _ := cmd.Flags().GetString("course")
		limit, _ := cmd.Flags().GetInt("limit")

		rounds, err := st.ListRounds(ctx, store.RoundFilter{
			UserID:   user,
			CourseID: courseID,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "rounds list")
		}

		if len(rounds) == 0 {
			fmt.Fprintln(os.Stderr, "No rounds found.")
			return nil
		}

		formatRoundsList(os.Stdout, rounds)
		return nil
	},
}

// -- rounds show --

var roundsShowCmd = &cobra.Command{
	Use:   "show <round-id>",
	Short: "Show full details of a round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		round, err := st.GetRound(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "rounds show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(round)
	},
}

// -- rounds stats --

var roundsStatsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show aggregate scoring stats for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		rounds, err := st.ListRounds(ctx, store.RoundFilter{UserID: args[0], Limit: 500})
		if err != nil {
			return eris.Wrap(err, "rounds stats")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(model.SummarizeRounds(rounds))
	},
}

func init() {
	roundsListCmd.Flags().String("user", "", "filter by user ID")
	roundsListCmd.Flags().String("course", "", "filter by course ID")
	roundsListCmd.Flags().Int("limit", 50, "max number of rounds to display")

	roundsCmd.AddCommand(roundsListCmd)
	roundsCmd.AddCommand(roundsShowCmd)
	roundsCmd.AddCommand(roundsStatsCmd)
	rootCmd.AddCommand(roundsCmd)
}

// formatRoundsList writes a tabular list of rounds to w.
func formatRoundsList(out io.Writer, rounds []model.Round) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tCOURSE\tPLAYER\tSCORE\tPUTTS")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t------\t-----\t-----")

	for _, r := range rounds {
		date := "-"
		if r.Date != nil {
			date = r.Date.Format(model.DateFormat)
		}
		course := "-"
		if r.Course != nil {
			course = r.Course.Name
			if len(course) > 30 {
				course = course[:27] + "..."
			}
		}
		score := "-"
		if total := r.TotalScore(); total != nil {
			score = fmt.Sprintf("%d", *total)
		}
		putts := "-"
		if total := r.PuttsTotal(); total != nil {
			putts = fmt.Sprintf("%d", *total)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID), date, course, r.PlayerName, score, putts)
	}
	_ = w.Flush()
}
