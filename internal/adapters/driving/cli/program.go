package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Manage grant programs",
	Long: `Grant programs define the eligibility criteria and report questions an
assessment runs against. Programs live in programs.toml under the config
directory and can be edited there.`,
}

var programListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known grant programs",
	Args:  cobra.NoArgs,
	RunE:  runProgramList,
}

var programShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a program's criteria and report questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgramShow,
}

var programSelectCmd = &cobra.Command{
	Use:   "select [name]",
	Short: "Select the program used by assessment commands",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgramSelect,
}

func init() {
	programCmd.AddCommand(programListCmd)
	programCmd.AddCommand(programShowCmd)
	programCmd.AddCommand(programSelectCmd)
	rootCmd.AddCommand(programCmd)
}

func runProgramList(cmd *cobra.Command, _ []string) error {
	names, err := programStore.Programs()
	if err != nil {
		return err
	}

	session, err := sessionStore.Load()
	if err != nil {
		return err
	}

	for _, name := range names {
		marker := " "
		if name == session.SelectedProgram {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, name)
	}
	return nil
}

func runProgramShow(cmd *cobra.Command, args []string) error {
	program, err := programStore.Get(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("%s\n", program.Name)
	if program.Description != "" {
		cmd.Printf("%s\n", program.Description)
	}
	cmd.Println("\nEligibility criteria:")
	for _, criterion := range program.EligibilityCriteria {
		cmd.Printf("  %s: %s\n", criterion.Name, criterion.Question)
	}
	cmd.Println("\nReport questions:")
	for i, question := range program.ReportQuestions {
		cmd.Printf("  %d. %s\n", i+1, question)
	}
	return nil
}

func runProgramSelect(cmd *cobra.Command, args []string) error {
	program, err := programStore.Get(args[0])
	if err != nil {
		return err
	}

	session, err := sessionStore.Load()
	if err != nil {
		return err
	}
	session.SelectedProgram = program.Name
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	cmd.Printf("Selected program: %s\n", program.Name)
	return nil
}
