package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/audit"
	"github.com/ziadkadry99/sharai/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the decision history of the current session",
	Long: `Lists the edits, AI reviews, confirmations and expert feedback recorded
for the current session, oldest first. With --all it lists decisions of
every session still on record, newest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("term", "", "only decisions about this term")
	historyCmd.Flags().Bool("all", false, "include every recorded session")
	historyCmd.Flags().Duration("since", 0, "only decisions within this long ago, e.g. 24h")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	termID, _ := cmd.Flags().GetString("term")
	all, _ := cmd.Flags().GetBool("all")
	since, _ := cmd.Flags().GetDuration("since")

	filter := audit.QueryFilter{TermID: termID}
	if since > 0 {
		from := time.Now().Add(-since)
		filter.Since = &from
	}
	out := cmd.OutOrStdout()

	if all {
		records, err := a.journal.Query(ctx, filter)
		if err != nil {
			return err
		}
		entries := make([]session.HistoryEntry, len(records))
		for i, r := range records {
			entries[i] = r.HistoryEntry
			entries[i].Details = fmt.Sprintf("%s (%s)", r.Details, r.SessionID)
		}
		printHistory(out, a.t, entries)
		return nil
	}

	sid, err := a.prefs.SessionID(ctx)
	if err != nil {
		return err
	}
	if sid == "" {
		_, err := a.requireSession()
		return err
	}
	filter.SessionID = sid
	records, err := a.journal.Query(ctx, filter)
	if err != nil {
		return err
	}
	entries := make([]session.HistoryEntry, len(records))
	for i, r := range records {
		entries[len(records)-1-i] = r.HistoryEntry
	}
	printHistory(out, a.t, entries)
	return nil
}
