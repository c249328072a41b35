package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/logger"
)

var (
	assessProgram string
	assessJSON    bool
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility [project]",
	Short: "Check a project against a program's eligibility criteria",
	Long: `Evaluates every eligibility criterion of the selected grant program
against the project's documents. Each criterion is answered yes/no with
supporting evidence; the project is eligible only when every criterion
is met. The result is saved to the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runEligibility,
}

var selectionCmd = &cobra.Command{
	Use:   "selection [project]",
	Short: "Check a project against a program's selection criteria",
	Long: `Follows the eligibility protocol and additionally suggests a remedial
action for every criterion the project fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelection,
}

var reportCmd = &cobra.Command{
	Use:   "report [project]",
	Short: "Generate a detailed report for a project",
	Long: `Answers every report question of the selected grant program in order
and saves the collected report to the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [project]",
	Short: "Generate a funding recommendation for a project",
	Long: `Synthesises a funding recommendation from the project's eligibility
result and detailed report. Both are taken from the session when present
and computed first when not.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	for _, cmd := range []*cobra.Command{eligibilityCmd, selectionCmd, reportCmd, recommendCmd} {
		cmd.Flags().StringVar(&assessProgram, "program", "", "grant program (default: the session's selected program)")
		cmd.Flags().BoolVar(&assessJSON, "json", false, "output the result as JSON")
		rootCmd.AddCommand(cmd)
	}
}

// resolveProgram returns the program named by --program, falling back to
// the session's selected program.
func resolveProgram(session *domain.Session) (*domain.Program, error) {
	name := assessProgram
	if name == "" {
		name = session.SelectedProgram
	}
	if name == "" {
		return nil, errors.New("no program selected; pass --program or run 'grantrag program select'")
	}
	return programStore.Get(name)
}

func runEligibility(cmd *cobra.Command, args []string) error {
	project := args[0]

	assessor, err := assessmentService.Assessor(project)
	if err != nil {
		return err
	}
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}
	program, err := resolveProgram(session)
	if err != nil {
		return err
	}

	result := assessor.CheckEligibility(cmd.Context(), program.EligibilityCriteria)

	session.Eligibility[project] = *result
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if assessJSON {
		return printJSON(cmd, result)
	}
	printCriteria(cmd, result.Criteria)
	cmd.Println(result.Summary)
	return nil
}

func runSelection(cmd *cobra.Command, args []string) error {
	project := args[0]

	assessor, err := assessmentService.Assessor(project)
	if err != nil {
		return err
	}
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}
	program, err := resolveProgram(session)
	if err != nil {
		return err
	}

	result := assessor.CheckSelection(cmd.Context(), program.EligibilityCriteria)

	session.Selection[project] = *result
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if assessJSON {
		return printJSON(cmd, result)
	}
	for _, cr := range result.Criteria {
		printCriterion(cmd, cr)
		if cr.ActionNeeded != "" {
			cmd.Printf("    Action: %s\n", cr.ActionNeeded)
		}
	}
	cmd.Println(result.Summary)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	project := args[0]

	assessor, err := assessmentService.Assessor(project)
	if err != nil {
		return err
	}
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}
	program, err := resolveProgram(session)
	if err != nil {
		return err
	}

	report := assessor.GenerateReport(cmd.Context(), program.ReportQuestions)

	session.Reports[project] = *report
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if assessJSON {
		return printJSON(cmd, report)
	}
	cmd.Printf("Report for %s (%s)\n\n", project, formatTimestamp(report.Timestamp))
	for _, section := range report.Sections {
		cmd.Printf("Q: %s\n", section.Question)
		cmd.Printf("%s\n\n", section.Answer)
	}
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	project := args[0]
	ctx := cmd.Context()

	assessor, err := assessmentService.Assessor(project)
	if err != nil {
		return err
	}
	session, err := sessionStore.Load()
	if err != nil {
		return err
	}
	program, err := resolveProgram(session)
	if err != nil {
		return err
	}

	// Reuse session results when present; compute what is missing.
	eligibility, ok := session.Eligibility[project]
	if !ok {
		logger.Info("No eligibility result in session, running the check first")
		eligibility = *assessor.CheckEligibility(ctx, program.EligibilityCriteria)
		session.Eligibility[project] = eligibility
	}
	report, ok := session.Reports[project]
	if !ok {
		logger.Info("No report in session, generating it first")
		report = *assessor.GenerateReport(ctx, program.ReportQuestions)
		session.Reports[project] = report
	}

	rec := assessor.GenerateRecommendation(ctx, &eligibility, &report)

	session.Recommendations[project] = *rec
	if err := sessionStore.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if assessJSON {
		return printJSON(cmd, rec)
	}
	cmd.Printf("Decision: %s\n\n", rec.Decision)
	cmd.Println(rec.Rationale)
	if rec.Error != "" {
		cmd.Printf("\nWarning: %s\n", rec.Error)
	}
	return nil
}

func printCriteria(cmd *cobra.Command, criteria []domain.CriterionResult) {
	for _, cr := range criteria {
		printCriterion(cmd, cr)
	}
}

func printCriterion(cmd *cobra.Command, cr domain.CriterionResult) {
	mark := "✗"
	if cr.Met {
		mark = "✓"
	}
	cmd.Printf("  %s %s\n", mark, cr.Name)
	cmd.Printf("    %s\n", cr.Answer)
}
