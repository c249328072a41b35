package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `List projects, show per-project statistics, and add new project folders.`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectStatsCmd = &cobra.Command{
	Use:   "stats [project]",
	Short: "Show a project's ingestion statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectStats,
}

var projectAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Copy an external folder in as a new project and ingest it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectStatsCmd)
	projectCmd.AddCommand(projectAddCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	projects := assessmentService.Projects()
	if len(projects) == 0 {
		cmd.Printf("No projects found under %s\n", cfg.ProjectsDir)
		return nil
	}
	for _, name := range projects {
		cmd.Println(name)
	}
	return nil
}

func runProjectStats(cmd *cobra.Command, args []string) error {
	assessor, err := assessmentService.Assessor(args[0])
	if err != nil {
		return err
	}

	project := assessor.Project()
	cmd.Printf("Project:   %s\n", project.Name)
	cmd.Printf("Path:      %s\n", project.DisplayPath())
	cmd.Printf("Documents: %d\n", project.Stats.DocumentsProcessed)
	cmd.Printf("Chunks:    %d\n", project.Stats.ChunksStored)
	cmd.Printf("Updated:   %s\n", formatTimestamp(project.Stats.LastUpdate))
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, err := source.AddProjectFolder(ctx, args[0])
	if err != nil {
		return fmt.Errorf("add project folder: %w", err)
	}
	cmd.Printf("Added project %s\n", name)

	if err := assessmentService.InitializeProjects(ctx); err != nil {
		return err
	}

	report, err := assessmentService.IngestProject(ctx, name)
	if err != nil {
		return err
	}
	printIngestReport(cmd, report)
	return nil
}
