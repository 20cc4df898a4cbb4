package cmd

import (
	"fmt"
	"time"

	"github.com/angelospk/subsubs/internal/constants"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent subtitle downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		outcome := a.orch.GetHistory(cmd.Context(), historyLimit)
		if outcome.Err != nil {
			return fmt.Errorf("failed to read download history: %w", outcome.Err)
		}

		out := cmd.OutOrStdout()
		if len(outcome.Entries) == 0 {
			fmt.Fprintln(out, "No downloads yet.")
			return nil
		}
		for _, e := range outcome.Entries {
			title := e.Title
			if e.Year != "" {
				title = fmt.Sprintf("%s (%s)", title, e.Year)
			}
			fmt.Fprintf(out, "%s  %-5s  %s  %s\n", e.DownloadedAt.Local().Format(time.DateTime), e.Language, e.FileName, title)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", constants.MaxHistoryEntries, "Number of entries to show (max 50)")
}
