package driven

import "github.com/veldt-labs/grantrag-cli/internal/core/domain"

// ProgramStore provides grant program definitions: ordered eligibility
// criteria and report questions. Supplied externally; the core consumes
// them as opaque input.
type ProgramStore interface {
	// Programs returns all known program names, sorted.
	Programs() ([]string, error)

	// Get returns a program definition by name.
	Get(name string) (*domain.Program, error)
}

// Prompt template names understood by PromptStore.
const (
	// PromptAskSystem is the system instruction for answer synthesis.
	PromptAskSystem = "ask_system"

	// PromptRecommendSystem is the system instruction for recommendation
	// generation. It mandates the DECISION: first line.
	PromptRecommendSystem = "recommend_system"

	// PromptChatCompareSystem is the system instruction for multi-project
	// chat comparison.
	PromptChatCompareSystem = "chat_compare_system"

	// PromptAnalysisSystem is the system instruction for comparative
	// analysis synthesis.
	PromptAnalysisSystem = "analysis_system"
)

// PromptStore loads customisable prompt templates by name.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}

// SessionStore persists the application session state at well-defined
// checkpoints.
type SessionStore interface {
	// Load returns the persisted session, or an empty session when none
	// has been saved yet.
	Load() (*domain.Session, error)

	// Save persists the session.
	Save(session *domain.Session) error
}
