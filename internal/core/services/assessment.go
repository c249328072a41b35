package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driving"
	"github.com/veldt-labs/grantrag-cli/internal/logger"
	"github.com/veldt-labs/grantrag-cli/internal/ratelimit"
)

// Ensure Assessment implements the interface.
var _ driving.AssessmentService = (*Assessment)(nil)

// chatFanOut bounds concurrent per-project asks in multi-project
// operations. Each project's namespace is isolated, so fan-out is safe.
const chatFanOut = 4

// searchTopK is the per-project result count for cross-project search.
const searchTopK = 3

// compareTemperature is used for cross-project synthesis calls.
const compareTemperature = 0.3

// summaryQuery is the fixed question comparative analysis puts to every
// project before synthesising across them.
const summaryQuery = "Summarize this project's key aspects including: " +
	"1. Main objectives and goals " +
	"2. Target beneficiaries " +
	"3. Implementation approach " +
	"4. Expected outcomes and impact " +
	"5. Budget and resource requirements"

// Assessment coordinates assessors across every project under the source
// root. Per-project failures are isolated; a broken project never takes
// down a cross-project operation.
type Assessment struct {
	b       Backends
	ragOpts []RAGOption

	completeLimit *ratelimit.Limiter

	mu        sync.RWMutex
	assessors map[string]*ProjectRAG
}

// NewAssessment creates the cross-project assessment service.
// Options are forwarded to every per-project assessor it constructs.
func NewAssessment(backends Backends, opts ...RAGOption) *Assessment {
	return &Assessment{
		b:             backends,
		ragOpts:       opts,
		completeLimit: ratelimit.NewLimiter(ratelimit.ServiceCompletion),
		assessors:     make(map[string]*ProjectRAG),
	}
}

// InitializeProjects discovers project folders and constructs one assessor
// per project. A single project's failure is logged and skipped; the rest
// of the system stays usable.
func (a *Assessment) InitializeProjects(ctx context.Context) error {
	names, err := a.b.Source.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.assessors = make(map[string]*ProjectRAG, len(names))
	for _, name := range names {
		project := domain.Project{
			Name:      name,
			Namespace: domain.SanitizeName(name),
			Path:      a.b.Source.ProjectPath(name),
		}
		stats, err := a.b.Stats.Get(ctx, project.Namespace)
		if err != nil {
			logger.Warn("Failed to load stats for %s: %v", name, err)
			continue
		}
		project.Stats = stats

		logger.Info("Initializing project: %s", name)
		a.assessors[name] = NewProjectRAG(project, a.b, a.ragOpts...)
	}

	logger.Info("Initialized %d projects", len(a.assessors))
	return nil
}

// Projects returns the known project names, sorted.
func (a *Assessment) Projects() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sortedKeys(a.assessors)
}

// Assessor returns the per-project assessor.
func (a *Assessment) Assessor(project string) (driving.ProjectAssessor, error) {
	rag, err := a.assessor(project)
	if err != nil {
		return nil, err
	}
	return rag, nil
}

func (a *Assessment) assessor(project string) (*ProjectRAG, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rag, ok := a.assessors[project]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, project)
	}
	return rag, nil
}

// IngestProject ingests one project's documents.
func (a *Assessment) IngestProject(ctx context.Context, project string) (*domain.IngestReport, error) {
	rag, err := a.assessor(project)
	if err != nil {
		return nil, err
	}
	return rag.IngestAll(ctx)
}

// IngestAllProjects ingests every project sequentially. A failed project
// contributes a nil report; the run continues.
func (a *Assessment) IngestAllProjects(ctx context.Context) (map[string]*domain.IngestReport, error) {
	reports := make(map[string]*domain.IngestReport)
	for _, name := range a.Projects() {
		logger.Info("Ingesting project: %s", name)
		report, err := a.IngestProject(ctx, name)
		if err != nil {
			logger.Warn("Failed to ingest project %s: %v", name, err)
			continue
		}
		reports[name] = report
	}
	return reports, nil
}

// AskProject answers a question against one project. An unknown project
// yields an error-answer, not a fault.
func (a *Assessment) AskProject(ctx context.Context, project, question string) domain.Answer {
	rag, err := a.assessor(project)
	if err != nil {
		return domain.Answer{
			Text:      fmt.Sprintf("Error: Project %s not found", project),
			Timestamp: time.Now().UTC(),
			Error:     err.Error(),
		}
	}
	return rag.Ask(ctx, question)
}

// ChatWithProjects asks the same question of each named project and
// synthesises a comparison of their answers. Per-project asks fan out
// concurrently; results are keyed by project name.
func (a *Assessment) ChatWithProjects(ctx context.Context, query string, projects []string) (*domain.ChatResult, error) {
	if len(projects) < 2 {
		return nil, domain.ErrInsufficientProjects
	}

	responses := a.askEach(ctx, query, projects)

	var chatContext strings.Builder
	fmt.Fprintf(&chatContext, "Question asked: %s\n\nProject responses:\n", query)
	for _, name := range sortedKeys(responses) {
		fmt.Fprintf(&chatContext, "\n%s:\n%s", name, responses[name].Text)
	}

	user := fmt.Sprintf(
		"Based on the responses from multiple projects to the question %q, please provide a comparative analysis.\n"+
			"Focus on:\n"+
			"1. Key similarities and differences in the responses\n"+
			"2. Notable insights unique to each project\n"+
			"3. Overall patterns or trends\n"+
			"4. Implications of these differences\n\n"+
			"Context:\n%s\n\n"+
			"Please provide a clear, structured analysis that helps understand how the projects relate to each other in the context of this question.",
		query, chatContext.String())

	comparison, err := a.compare(ctx, driven.PromptChatCompareSystem, user)
	if err != nil {
		logger.Warn("Comparison synthesis failed: %v", err)
		comparison = fmt.Sprintf("Error generating comparative analysis: %v", err)
	}

	return &domain.ChatResult{
		Responses:  responses,
		Comparison: comparison,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// SearchAllProjects retrieves matching chunks from every project.
// Projects with no matches are omitted.
func (a *Assessment) SearchAllProjects(ctx context.Context, query string) map[string][]domain.RetrievedChunk {
	results := make(map[string][]domain.RetrievedChunk)
	for _, name := range a.Projects() {
		rag, err := a.assessor(name)
		if err != nil {
			continue
		}
		if chunks := rag.Retrieve(ctx, query, searchTopK); len(chunks) > 0 {
			results[name] = chunks
		}
	}
	return results
}

// GenerateComparativeAnalysis compares projects along fixed analytical
// dimensions. Its failure mode is always a data value with a timestamp,
// never a propagated fault.
func (a *Assessment) GenerateComparativeAnalysis(ctx context.Context, session *domain.Session, eligibleOnly bool) *domain.ComparativeAnalysis {
	analysis := &domain.ComparativeAnalysis{Timestamp: time.Now().UTC()}

	projects := a.Projects()
	if eligibleOnly && session != nil {
		eligible := session.EligibleProjects()
		known := make(map[string]struct{}, len(eligible))
		for _, name := range eligible {
			known[name] = struct{}{}
		}
		filtered := projects[:0:0]
		for _, name := range projects {
			if _, ok := known[name]; ok {
				filtered = append(filtered, name)
			}
		}
		projects = filtered
	}

	if len(projects) < 2 {
		analysis.Error = "At least two projects are required for comparative analysis"
		return analysis
	}

	analysis.Summaries = a.askEach(ctx, summaryQuery, projects)
	analysis.ProjectsCompared = sortedKeys(analysis.Summaries)

	var projectsContext strings.Builder
	for _, name := range analysis.ProjectsCompared {
		fmt.Fprintf(&projectsContext, "\nProject: %s\n%s\n", name, analysis.Summaries[name].Text)
	}

	user := fmt.Sprintf(
		"Compare the following projects, analyzing their relative merits, "+
			"potential impact, and areas of complementarity or overlap:\n\n%s\n\n"+
			"Please structure your analysis to cover:\n"+
			"1. Key similarities and differences\n"+
			"2. Relative strengths and weaknesses\n"+
			"3. Potential synergies or overlaps\n"+
			"4. Comparative impact assessment\n"+
			"5. Resource efficiency comparison\n"+
			"6. Recommendations for optimization",
		projectsContext.String())

	comparison, err := a.compare(ctx, driven.PromptAnalysisSystem, user)
	if err != nil {
		logger.Warn("Comparative analysis failed: %v", err)
		analysis.Error = err.Error()
		return analysis
	}

	analysis.Comparison = comparison
	return analysis
}

// askEach fans the same question out to every named project, bounded by
// chatFanOut workers. Per-project failures become error-answers keyed by
// project name.
func (a *Assessment) askEach(ctx context.Context, query string, projects []string) map[string]domain.Answer {
	responses := make(map[string]domain.Answer, len(projects))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, chatFanOut)

	for _, name := range projects {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			answer := a.AskProject(ctx, name, query)

			mu.Lock()
			responses[name] = answer
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	return responses
}

// compare issues one rate-limited, retried cross-project synthesis call.
func (a *Assessment) compare(ctx context.Context, promptName, user string) (string, error) {
	system, err := a.b.Prompts.Load(promptName)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	var text string
	err = ratelimit.Retry(ctx, ratelimit.DefaultAttempts, func() error {
		if err := a.completeLimit.Wait(ctx); err != nil {
			return err
		}
		var completeErr error
		text, completeErr = a.b.LLM.Complete(ctx, system, user, driven.CompleteOptions{
			Temperature: compareTemperature,
		})
		return completeErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}
	return text, nil
}
