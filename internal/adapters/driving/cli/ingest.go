package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

var (
	ingestAll  bool
	ingestJSON bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [project]",
	Short: "Ingest project documents into the index",
	Long: `Extracts, chunks and embeds every supported document under a project
folder. Files whose modification time has not changed since the last run
are skipped; a single file's failure never aborts the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestAll, "all", false, "ingest every project")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if ingestAll {
		reports, err := assessmentService.IngestAllProjects(ctx)
		if err != nil {
			return err
		}
		if ingestJSON {
			return printJSON(cmd, reports)
		}
		for _, name := range assessmentService.Projects() {
			if report, ok := reports[name]; ok {
				printIngestReport(cmd, report)
			}
		}
		return nil
	}

	if len(args) == 0 {
		return errors.New("specify a project name or --all")
	}

	report, err := assessmentService.IngestProject(ctx, args[0])
	if err != nil {
		return err
	}
	if ingestJSON {
		return printJSON(cmd, report)
	}
	printIngestReport(cmd, report)
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Project: %s\n", report.Project)
	cmd.Printf("  Processed: %d\n", report.TotalProcessed())
	cmd.Printf("  Skipped:   %d\n", report.TotalSkipped())
	cmd.Printf("  Failed:    %d\n", report.TotalErrors())
	cmd.Printf("  Elapsed:   %s\n", report.Elapsed.Round(timeRounding))
	for _, outcome := range report.Errors {
		cmd.Printf("  [failed] %s: %s\n", outcome.File, outcome.Error)
	}
	cmd.Println()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
