package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [project] [question]",
	Short: "Ask a question about a project's documents",
	Long: `Answers a question from the project's indexed evidence. Retrieval and
answers are cached for an hour, so repeating a question is free.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	project := args[0]
	question := strings.Join(args[1:], " ")

	answer := assessmentService.AskProject(cmd.Context(), project, question)

	if askJSON {
		return printJSON(cmd, answer)
	}

	if answer.Failed() {
		cmd.Printf("Failed: %s\n", answer.Error)
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}
