package cli

import (
	"github.com/spf13/cobra"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

var sessionJSON bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show or reset the saved assessment session",
	Long: `The session holds the selected program and every saved assessment
result, so reports and recommendations survive across runs without
re-running retrieval.`,
	RunE: runSessionShow,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved session",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard every saved assessment result",
	Args:  cobra.NoArgs,
	RunE:  runSessionReset,
}

func init() {
	sessionCmd.Flags().BoolVar(&sessionJSON, "json", false, "output the session as JSON")
	sessionShowCmd.Flags().BoolVar(&sessionJSON, "json", false, "output the session as JSON")
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionShow(cmd *cobra.Command, _ []string) error {
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}

	if sessionJSON {
		return printJSON(cmd, session)
	}

	if session.SelectedProgram == "" {
		cmd.Println("Program: (none selected)")
	} else {
		cmd.Printf("Program: %s\n", session.SelectedProgram)
	}
	cmd.Printf("Eligibility results:  %d\n", len(session.Eligibility))
	cmd.Printf("Selection results:    %d\n", len(session.Selection))
	cmd.Printf("Reports:              %d\n", len(session.Reports))
	cmd.Printf("Recommendations:      %d\n", len(session.Recommendations))
	if session.Comparative != nil {
		cmd.Printf("Comparative analysis: %s\n", formatTimestamp(session.Comparative.Timestamp))
	}

	if eligible := session.EligibleProjects(); len(eligible) > 0 {
		cmd.Println("\nEligible projects:")
		for _, name := range eligible {
			cmd.Printf("  %s\n", name)
		}
	}
	return nil
}

func runSessionReset(cmd *cobra.Command, _ []string) error {
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}

	// Keep the program selection, drop every saved result.
	reset := domain.NewSession()
	reset.SelectedProgram = session.SelectedProgram
	if err := sessionStore.Save(reset); err != nil {
		return err
	}

	cmd.Println("Session reset.")
	return nil
}
