package driving

import (
	"context"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// ProjectAssessor exposes the per-project retrieval-and-assessment
// operations. Every method converts failures below its boundary to data:
// a result object with an Error field, or a per-file outcome, never a
// propagated fault that aborts a batch.
type ProjectAssessor interface {
	// Project returns the project's descriptor and current stats.
	Project() domain.Project

	// IngestAll ingests every supported file under the project folder,
	// sequentially, with partial-failure accounting.
	IngestAll(ctx context.Context) (*domain.IngestReport, error)

	// IngestFile ingests a single file.
	IngestFile(ctx context.Context, path string) domain.FileOutcome

	// Ask answers one question from indexed evidence.
	Ask(ctx context.Context, query string) domain.Answer

	// Retrieve returns the top-k chunks for a query without synthesis.
	Retrieve(ctx context.Context, query string, k int) []domain.RetrievedChunk

	// CheckEligibility evaluates every criterion in order.
	CheckEligibility(ctx context.Context, criteria []domain.Criterion) *domain.EligibilityResult

	// CheckSelection evaluates criteria and adds remediation suggestions
	// for failures.
	CheckSelection(ctx context.Context, criteria []domain.Criterion) *domain.SelectionResult

	// GenerateReport answers every question in order.
	GenerateReport(ctx context.Context, questions []string) *domain.Report

	// GenerateRecommendation synthesises a funding recommendation from an
	// eligibility result and a report.
	GenerateRecommendation(ctx context.Context, eligibility *domain.EligibilityResult, report *domain.Report) *domain.Recommendation
}

// AssessmentService exposes the cross-project operations.
type AssessmentService interface {
	// InitializeProjects discovers projects and constructs one assessor
	// per project, logging and continuing on per-project failures.
	InitializeProjects(ctx context.Context) error

	// Projects returns the known project names, sorted.
	Projects() []string

	// Assessor returns the per-project assessor.
	Assessor(project string) (ProjectAssessor, error)

	// IngestProject ingests one project's documents.
	IngestProject(ctx context.Context, project string) (*domain.IngestReport, error)

	// IngestAllProjects ingests every project.
	IngestAllProjects(ctx context.Context) (map[string]*domain.IngestReport, error)

	// AskProject answers a question against one project.
	AskProject(ctx context.Context, project, question string) domain.Answer

	// ChatWithProjects asks the same question of at least two projects and
	// synthesises a comparison of their answers.
	ChatWithProjects(ctx context.Context, query string, projects []string) (*domain.ChatResult, error)

	// SearchAllProjects retrieves matching chunks from every project;
	// projects with no matches are omitted.
	SearchAllProjects(ctx context.Context, query string) map[string][]domain.RetrievedChunk

	// GenerateComparativeAnalysis compares projects along fixed analytical
	// dimensions, optionally restricted to projects already found eligible.
	GenerateComparativeAnalysis(ctx context.Context, session *domain.Session, eligibleOnly bool) *domain.ComparativeAnalysis
}
