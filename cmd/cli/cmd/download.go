package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/angelospk/subsubs/pkg/orchestrator"
	"github.com/spf13/cobra"
)

var (
	downloadQuery string
	downloadIndex int
	downloadOut   string
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Search and download one subtitle",
	Long: `Searches OpenSubtitles, picks the Nth ranked result (as listed by
"subsubs search") and saves its subtitle file. Successful downloads are
recorded in the download history.

Examples:
  subsubs download --query "Inception" --index 1
  subsubs download -q "Inception" -n 3 --out ~/Movies/Inception`,
	RunE: runDownload,
}

func init() {
	RootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&downloadQuery, "query", "q", "", "Search query (movie/show title)")
	downloadCmd.Flags().IntVarP(&downloadIndex, "index", "n", 1, "1-based position in the ranked results")
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", ".", "Directory to save the subtitle into")
}

func runDownload(cmd *cobra.Command, args []string) error {
	if downloadIndex < 1 {
		return errors.New("--index must be 1 or greater")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	session := orchestrator.NewSession()
	searched := a.orch.SubmitSearch(ctx, session, downloadQuery)
	if err := searchError(searched); err != nil {
		return err
	}

	record, ok := session.Record(downloadIndex - 1)
	if !ok {
		return fmt.Errorf("result %d not available: search for %q returned %d results", downloadIndex, searched.Query, len(searched.Results))
	}

	outcome := a.orch.SubmitDownload(ctx, record)
	if outcome.State != orchestrator.DownloadCompleted {
		msg := describeError(outcome.Err)
		if outcome.Advice != "" {
			msg += ". " + outcome.Advice
		}
		return fmt.Errorf("download failed: %s", msg)
	}

	if err := os.MkdirAll(downloadOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	target := filepath.Join(downloadOut, filepath.Base(outcome.FileName))
	if err := os.WriteFile(target, outcome.Content, 0o644); err != nil {
		return fmt.Errorf("failed to save subtitle: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes) to %s\n", outcome.FileName, len(outcome.Content), target)
	if outcome.HistoryErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: download was not recorded in history: %v\n", outcome.HistoryErr)
	}
	return nil
}
