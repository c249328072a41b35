package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	compareEligibleOnly bool
	compareJSON         bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Generate a comparative analysis across projects",
	Long: `Queries every project with a fixed summarisation question and
synthesises a comparison along fixed analytical dimensions: similarities,
strengths and weaknesses, synergies, impact, resource efficiency and
optimisation recommendations.

With --eligible-only, the comparison is restricted to projects already
found eligible in a prior eligibility pass. The analysis is saved to the
session.`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareEligibleOnly, "eligible-only", false, "compare only projects found eligible")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output the analysis as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}

	analysis := assessmentService.GenerateComparativeAnalysis(cmd.Context(), session, compareEligibleOnly)

	session.Comparative = analysis
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if compareJSON {
		return printJSON(cmd, analysis)
	}

	if analysis.Error != "" {
		cmd.Printf("Comparative analysis failed: %s\n", analysis.Error)
		return nil
	}

	for _, name := range analysis.ProjectsCompared {
		cmd.Printf("--- %s ---\n", name)
		cmd.Printf("%s\n\n", analysis.Summaries[name].Text)
	}
	cmd.Println("--- Analysis ---")
	cmd.Println(analysis.Comparison)
	return nil
}
