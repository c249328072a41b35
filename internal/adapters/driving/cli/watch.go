package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/grantrag-cli/internal/connectors/filesystem"
	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch project folders and re-ingest changed files",
	Long: `Watches every project folder for file changes and re-ingests each
changed file after a short debounce. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := filesystem.NewWatcher(source)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", cfg.ProjectsDir)

	for event := range events {
		assessor, err := assessmentService.Assessor(event.Project)
		if err != nil {
			// A new folder appeared; pick it up and retry.
			if initErr := assessmentService.InitializeProjects(ctx); initErr != nil {
				logger.Warn("Failed to refresh projects: %v", initErr)
				continue
			}
			assessor, err = assessmentService.Assessor(event.Project)
			if err != nil {
				logger.Warn("Unknown project for %s: %v", event.Path, err)
				continue
			}
		}

		outcome := assessor.IngestFile(ctx, event.Path)
		switch outcome.Status {
		case domain.FileDone:
			cmd.Printf("[%s] %s: %d chunks\n", event.Project, outcome.File, outcome.Chunks)
		case domain.FileSkipped:
			logger.Debug("Skipped %s", event.Path)
		case domain.FileFailed:
			cmd.Printf("[%s] %s failed: %s\n", event.Project, outcome.File, outcome.Error)
		}
	}

	cmd.Println("\nStopped watching.")
	return nil
}
