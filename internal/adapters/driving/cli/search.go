package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for evidence across every project",
	Long: `Runs similarity search against every project's index and shows the
best-matching chunks per project. Projects with no matches are omitted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	results := assessmentService.SearchAllProjects(cmd.Context(), query)

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd.Printf("%s:\n", name)
		for i, chunk := range results[name] {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, chunk.Metadata.FileName, chunk.Score)
			cmd.Printf("      %s\n", snippet(chunk.Content, 160))
		}
		cmd.Println()
	}
	return nil
}

// snippet truncates content to at most n characters on a rune boundary.
func snippet(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
