// Package cli implements the grantrag command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/config/file"
	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/embedding/ollama"
	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/veldt-labs/grantrag-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/veldt-labs/grantrag-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/veldt-labs/grantrag-cli/internal/adapters/driven/llm/openai"
	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/storage/sqlite"
	"github.com/veldt-labs/grantrag-cli/internal/chunker"
	"github.com/veldt-labs/grantrag-cli/internal/connectors/filesystem"
	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
	"github.com/veldt-labs/grantrag-cli/internal/core/services"
	"github.com/veldt-labs/grantrag-cli/internal/extractors"
	"github.com/veldt-labs/grantrag-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// timeRounding trims elapsed durations for display.
const timeRounding = 10 * time.Millisecond

var (
	configDirFlag string
	verboseFlag   bool
)

// Wired services, populated by initServices before a command runs.
var (
	cfg               *file.Config
	store             *sqlite.Store
	source            *filesystem.Source
	embeddingService  driven.EmbeddingService
	llmService        driven.LLMService
	programStore      driven.ProgramStore
	promptStore       driven.PromptStore
	sessionStore      driven.SessionStore
	assessmentService *services.Assessment
)

var rootCmd = &cobra.Command{
	Use:   "grantrag",
	Short: "Assess grant applications from project documents",
	Long: `GrantRAG ingests each project's documents into a per-project vector
index and answers assessment questions from that evidence: eligibility
checks, selection checks, detailed reports, funding recommendations and
cross-project comparisons.

Projects are folders under the configured projects directory, one folder
per grant application.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		return initServices(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", "", "config directory (default ~/.grantrag)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() {
	defer closeServices()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeServices()
		os.Exit(1)
	}
}

// initServices wires the full stack from configuration: filesystem source,
// SQLite-backed storage, model providers and the assessment service.
func initServices(cmd *cobra.Command) error {
	// Already wired, either by a previous command or by a test.
	if assessmentService != nil {
		return nil
	}

	var err error

	cfg, err = file.LoadConfig(configDirFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	source, err = filesystem.NewSource(cfg.ProjectsDir)
	if err != nil {
		return fmt.Errorf("open projects directory: %w", err)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}

	programStore, err = file.NewProgramStore(configDirFlag)
	if err != nil {
		return fmt.Errorf("open program store: %w", err)
	}

	promptDir := ""
	if configDirFlag != "" {
		promptDir = filepath.Join(configDirFlag, "prompts")
	}
	promptStore, err = file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	sessionStore, err = file.NewSessionStore(configDirFlag)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	embeddingService, err = newEmbeddingService(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("configure embedding provider: %w", err)
	}

	llmService, err = newLLMService(cfg.LLM)
	if err != nil {
		return fmt.Errorf("configure LLM provider: %w", err)
	}

	assessmentService = services.NewAssessment(services.Backends{
		Source:     source,
		Extractors: extractors.Defaults(),
		Chunker: chunker.New(
			chunker.WithChunkSize(cfg.Ingest.ChunkSize),
			chunker.WithOverlap(cfg.Ingest.ChunkOverlap),
		),
		Index:      store.VectorIndex(),
		Ledger:     store.IngestionLedger(),
		QueryCache: store.QueryCache(),
		Answers:    store.AnswerCache(),
		Stats:      store.StatsStore(),
		Embedder:   embeddingService,
		LLM:        llmService,
		Prompts:    promptStore,
	}, services.WithTopK(cfg.Retrieval.TopK))

	return assessmentService.InitializeProjects(cmd.Context())
}

// newEmbeddingService builds the configured embedding provider.
func newEmbeddingService(p file.ProviderConfig) (driven.EmbeddingService, error) {
	switch p.Provider {
	case "openai", "":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  p.APIKey(),
			BaseURL: p.BaseURL,
			Model:   p.Model,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: p.BaseURL,
			Model:   p.Model,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrEmbeddingUnavailable, p.Provider)
	}
}

// newLLMService builds the configured language model provider.
func newLLMService(p file.ProviderConfig) (driven.LLMService, error) {
	switch p.Provider {
	case "openai", "":
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  p.APIKey(),
			BaseURL: p.BaseURL,
			Model:   p.Model,
		})
	case "anthropic":
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  p.APIKey(),
			BaseURL: p.BaseURL,
			Model:   p.Model,
		})
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: p.BaseURL,
			Model:   p.Model,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrLLMUnavailable, p.Provider)
	}
}

func closeServices() {
	if embeddingService != nil {
		_ = embeddingService.Close()
	}
	if llmService != nil {
		_ = llmService.Close()
	}
	if store != nil {
		_ = store.Close()
	}
}

// formatTimestamp renders a result timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
