// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ProjectSource: Lists projects and reads their document files
//   - Extractor / ExtractorRegistry: Converts raw files into plain text
//   - VectorIndex: Namespace-scoped chunk storage and similarity search
//   - IngestionLedger: Per-file modification-time ledger
//   - QueryCache / AnswerCache: TTL-bounded memoization of retrieval
//     results and synthesised answers
//   - EmbeddingService: Generates vector embeddings (text -> vector)
//   - LLMService: Language model completion (prompt -> text)
//   - ProgramStore: Grant program definitions (criteria + report questions)
//   - PromptStore: Customisable prompt templates
//   - SessionStore: Application session state persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
