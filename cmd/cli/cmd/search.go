package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/angelospk/subsubs/pkg/core/metadata"
	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	"github.com/angelospk/subsubs/pkg/orchestrator"
	"github.com/spf13/cobra"
)

var searchQuery string

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for subtitles on OpenSubtitles",
	Long: `Searches OpenSubtitles.com by title and prints the ranked results:
English first, then by download count.

Examples:
  subsubs search --query "Inception"
  subsubs search -q "Breaking Bad"`,
	RunE: runSearch,
}

func init() {
	RootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Search query (movie/show title)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	outcome := a.orch.SubmitSearch(cmd.Context(), orchestrator.NewSession(), searchQuery)
	if err := searchError(outcome); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outcome.State == orchestrator.SearchEmpty {
		fmt.Fprintf(out, "No subtitles found for %q.\n", outcome.Query)
		return nil
	}
	printResults(out, outcome)
	return nil
}

func searchError(outcome orchestrator.SearchOutcome) error {
	switch {
	case outcome.Err == nil:
		return nil
	case errors.Is(outcome.Err, orchestrator.ErrEmptyQuery):
		return errors.New("--query must not be empty")
	default:
		return fmt.Errorf("subtitle search failed: %s", describeError(outcome.Err))
	}
}

func printResults(out io.Writer, outcome orchestrator.SearchOutcome) {
	fmt.Fprintf(out, "Found %d subtitles for %q:\n", len(outcome.Results), outcome.Query)
	fmt.Fprintln(out, "--------------------------------------------------")
	for i, rec := range outcome.Results {
		d := metadata.Describe(rec.Release, rec.Language, rec.HearingImpaired)
		fmt.Fprintf(out, "[%d] %s (%s)  downloads: %d  rating: %.1f\n", i+1, d.LanguageName, rec.Language, rec.DownloadCount, rec.Rating)
		fmt.Fprintf(out, "    %s\n", titleLine(rec))
		if rec.Release != "" {
			fmt.Fprintf(out, "    Release: %s%s\n", rec.Release, qualitySuffix(d))
		}
		if !rec.Downloadable() {
			fmt.Fprintln(out, "    (no downloadable files)")
		}
	}
	fmt.Fprintln(out, "--------------------------------------------------")
}

func titleLine(rec opensubtitles.SubtitleRecord) string {
	title := rec.MovieTitle
	if title == "" {
		title = "(untitled)"
	}
	if rec.Year != nil {
		return fmt.Sprintf("%s (%d)", title, *rec.Year)
	}
	return title
}

func qualitySuffix(d metadata.Details) string {
	var tags []string
	for _, t := range []string{d.Release.Resolution, d.Release.Source} {
		if t != "" {
			tags = append(tags, t)
		}
	}
	if d.HearingImpaired {
		tags = append(tags, "HI")
	}
	if d.Forced {
		tags = append(tags, "forced")
	}
	if len(tags) == 0 {
		return ""
	}
	return " [" + strings.Join(tags, ", ") + "]"
}
