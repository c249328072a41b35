package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatProjects []string
	chatJSON     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the same question across multiple projects",
	Long: `Asks a question of each named project independently, then synthesises
a comparison of their answers. Requires at least two projects; when
--projects is omitted, every known project is queried.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVar(&chatProjects, "projects", nil, "projects to query (default: all)")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	projects := chatProjects
	if len(projects) == 0 {
		projects = assessmentService.Projects()
	}

	result, err := assessmentService.ChatWithProjects(cmd.Context(), question, projects)
	if err != nil {
		return err
	}

	if chatJSON {
		return printJSON(cmd, result)
	}

	names := make([]string, 0, len(result.Responses))
	for name := range result.Responses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		answer := result.Responses[name]
		cmd.Printf("--- %s ---\n", name)
		if answer.Failed() {
			cmd.Printf("Failed: %s\n\n", answer.Error)
			continue
		}
		cmd.Printf("%s\n\n", answer.Text)
	}

	cmd.Println("--- Comparison ---")
	cmd.Println(result.Comparison)
	return nil
}
