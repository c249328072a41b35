package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veldt-labs/grantrag-cli/internal/chunker"
	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driving"
	"github.com/veldt-labs/grantrag-cli/internal/logger"
	"github.com/veldt-labs/grantrag-cli/internal/ratelimit"
)

// Ensure ProjectRAG implements the interface.
var _ driving.ProjectAssessor = (*ProjectRAG)(nil)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// Generation temperatures per operation.
const (
	askTemperature       = 0.3
	recommendTemperature = 0.2
)

// noEvidenceContext replaces the context block when retrieval returns
// nothing. The model is still consulted so it can state the absence of
// evidence in its own words.
const noEvidenceContext = "No relevant information found in the project documents."

// Backends bundles the driven ports a ProjectRAG operates against.
// The vector index, ledger, caches and stats store are all scoped by the
// project's namespace at call time, so a single set of backends serves
// every project.
type Backends struct {
	Source     driven.ProjectSource
	Extractors driven.ExtractorRegistry
	Chunker    *chunker.Chunker
	Index      driven.VectorIndex
	Ledger     driven.IngestionLedger
	QueryCache driven.QueryCache
	Answers    driven.AnswerCache
	Stats      driven.StatsStore
	Embedder   driven.EmbeddingService
	LLM        driven.LLMService
	Prompts    driven.PromptStore
}

// ProjectRAG is the per-project retrieval-and-assessment pipeline.
// All operations are scoped to the project's namespace; no call ever
// reads or writes another project's chunks, ledger entries or caches.
type ProjectRAG struct {
	project domain.Project
	b       Backends
	topK    int

	embedLimit    *ratelimit.Limiter
	completeLimit *ratelimit.Limiter
}

// RAGOption configures a ProjectRAG.
type RAGOption func(*ProjectRAG)

// WithTopK sets the number of chunks retrieved per query.
func WithTopK(k int) RAGOption {
	return func(r *ProjectRAG) {
		if k > 0 {
			r.topK = k
		}
	}
}

// NewProjectRAG creates the assessor for one project.
func NewProjectRAG(project domain.Project, backends Backends, opts ...RAGOption) *ProjectRAG {
	r := &ProjectRAG{
		project:       project,
		b:             backends,
		topK:          DefaultTopK,
		embedLimit:    ratelimit.NewLimiter(ratelimit.ServiceEmbedding),
		completeLimit: ratelimit.NewLimiter(ratelimit.ServiceCompletion),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Project returns the project descriptor with current stats.
func (r *ProjectRAG) Project() domain.Project {
	if stats, err := r.b.Stats.Get(context.Background(), r.project.Namespace); err == nil {
		r.project.Stats = stats
	}
	return r.project
}

// ==================== Ingestion ====================

// IngestAll ingests every file under the project folder, sequentially.
// A single file's failure never aborts the run; the report accounts for
// every file seen.
func (r *ProjectRAG) IngestAll(ctx context.Context) (*domain.IngestReport, error) {
	report := &domain.IngestReport{
		RunID:     uuid.NewString(),
		Project:   r.project.Name,
		StartTime: time.Now(),
	}

	files, err := r.b.Source.ListFiles(ctx, r.project.Name)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	logger.Section(fmt.Sprintf("Ingesting %s (%d files)", r.project.Name, len(files)))

	for _, f := range files {
		outcome := r.IngestFile(ctx, f.Path)
		switch outcome.Status {
		case domain.FileDone:
			report.Processed = append(report.Processed, outcome)
		case domain.FileSkipped:
			report.Skipped = append(report.Skipped, outcome)
		case domain.FileFailed:
			logger.Warn("Failed to ingest %s: %s", outcome.File, outcome.Error)
			report.Errors = append(report.Errors, outcome)
		}
	}

	report.EndTime = time.Now()
	report.Elapsed = report.EndTime.Sub(report.StartTime)

	logger.Info("Ingestion of %s finished: %d processed, %d skipped, %d failed in %s",
		r.project.Name, report.TotalProcessed(), report.TotalSkipped(), report.TotalErrors(), report.Elapsed)

	return report, nil
}

// IngestFile ingests a single file: extract, chunk, embed, replace the
// file's chunks in the index, then commit its modification time to the
// ledger. The ledger commit is last, so a crash mid-file re-ingests the
// whole file next run rather than losing chunks.
func (r *ProjectRAG) IngestFile(ctx context.Context, path string) domain.FileOutcome {
	file, err := r.b.Source.Stat(ctx, path)
	if err != nil {
		return failedOutcome(path, path, fmt.Errorf("stat: %w", err))
	}
	if file.RelativePath == "" {
		file.RelativePath = r.relativePath(file)
	}

	outcome := domain.FileOutcome{File: file.RelativePath, FullPath: file.Path}

	if _, err := r.b.Extractors.ForFile(file.Path); err != nil {
		logger.Debug("Skipping unsupported file %s", file.RelativePath)
		outcome.Status = domain.FileSkipped
		return outcome
	}

	recorded, seen, err := r.b.Ledger.Get(ctx, r.project.Namespace, file.Path)
	if err != nil {
		outcome.Status = domain.FileFailed
		outcome.Error = fmt.Sprintf("ledger read: %v", err)
		return outcome
	}
	if seen && !recorded.Before(file.ModTime) {
		logger.Debug("Skipping unchanged file %s", file.RelativePath)
		outcome.Status = domain.FileSkipped
		return outcome
	}

	chunks, err := r.extractAndChunk(ctx, file)
	if err != nil {
		outcome.Status = domain.FileFailed
		outcome.Error = err.Error()
		return outcome
	}

	if err := r.embedChunks(ctx, chunks); err != nil {
		outcome.Status = domain.FileFailed
		outcome.Error = err.Error()
		return outcome
	}

	if err := r.replaceFileChunks(ctx, file.Name, chunks); err != nil {
		outcome.Status = domain.FileFailed
		outcome.Error = fmt.Sprintf("%v: %v", domain.ErrIndexWriteFailed, err)
		return outcome
	}

	if err := r.b.Ledger.Commit(ctx, r.project.Namespace, file.Path, file.ModTime); err != nil {
		outcome.Status = domain.FileFailed
		outcome.Error = fmt.Sprintf("ledger commit: %v", err)
		return outcome
	}

	r.recordIngest(ctx, len(chunks))

	logger.Debug("Ingested %s: %d chunks", file.RelativePath, len(chunks))
	outcome.Status = domain.FileDone
	outcome.Chunks = len(chunks)
	return outcome
}

// relativePath reconstructs a file's project-relative path when the
// source did not report one. Provenance on chunks and ingest outcomes
// must never be blank.
func (r *ProjectRAG) relativePath(file *domain.SourceFile) string {
	if r.project.Path != "" {
		if rel, err := filepath.Rel(r.project.Path, file.Path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return file.Name
}

// extractAndChunk reads the file, extracts its text and splits it into
// chunks carrying full provenance metadata.
func (r *ProjectRAG) extractAndChunk(ctx context.Context, file *domain.SourceFile) ([]domain.Chunk, error) {
	extractor, err := r.b.Extractors.ForFile(file.Path)
	if err != nil {
		return nil, err
	}

	content, err := r.b.Source.ReadFile(ctx, file.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	doc, err := extractor.Extract(ctx, *file, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%w: empty extracted text", domain.ErrExtractionFailed)
	}

	texts := r.b.Chunker.Chunk(doc.Text)
	if len(texts) == 0 {
		return nil, domain.ErrEmptyChunkSet
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:      domain.ChunkID(file.Name, i),
			Content: text,
			Metadata: domain.ChunkMetadata{
				Source:       file.Path,
				FileName:     file.Name,
				ParentFolder: file.ParentFolder,
				RelativePath: file.RelativePath,
				FileType:     strings.TrimPrefix(file.Extension, "."),
				SheetNames:   doc.SheetNames,
				ChunkIndex:   i,
				TotalChunks:  len(texts),
				IngestedAt:   now,
			},
		}
	}
	return chunks, nil
}

// embedChunks fills in embeddings via one batch call, rate limited and
// retried.
func (r *ProjectRAG) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	var embeddings [][]float32
	err := ratelimit.Retry(ctx, ratelimit.DefaultAttempts, func() error {
		if err := r.embedLimit.Wait(ctx); err != nil {
			return err
		}
		var embedErr error
		embeddings, embedErr = r.b.Embedder.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embed: expected %d embeddings, got %d", len(chunks), len(embeddings))
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return nil
}

// replaceFileChunks deletes every chunk previously stored for the file,
// then upserts the new set. Chunk IDs are stable per (file, index), so the
// stale set is exactly the IDs sharing the file's sanitised prefix.
func (r *ProjectRAG) replaceFileChunks(ctx context.Context, fileName string, chunks []domain.Chunk) error {
	existing, err := r.b.Index.ListIDs(ctx, r.project.Namespace)
	if err != nil {
		return fmt.Errorf("list ids: %w", err)
	}

	prefix := domain.SanitizeName(fileName) + "_"
	var stale []string
	for _, id := range existing {
		if strings.HasPrefix(id, prefix) {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := r.b.Index.Delete(ctx, r.project.Namespace, stale); err != nil {
			return fmt.Errorf("delete stale chunks: %w", err)
		}
	}

	for _, chunk := range chunks {
		if err := r.b.Index.Upsert(ctx, r.project.Namespace, chunk); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// recordIngest updates running stats after one successful file.
func (r *ProjectRAG) recordIngest(ctx context.Context, chunkCount int) {
	stats, err := r.b.Stats.Get(ctx, r.project.Namespace)
	if err != nil {
		logger.Warn("Failed to read stats for %s: %v", r.project.Name, err)
		return
	}
	stats.DocumentsProcessed++
	stats.ChunksStored += chunkCount
	stats.LastUpdate = time.Now().UTC()
	if err := r.b.Stats.Put(ctx, r.project.Namespace, stats); err != nil {
		logger.Warn("Failed to write stats for %s: %v", r.project.Name, err)
	}
	r.project.Stats = stats
}

// ==================== Retrieval and synthesis ====================

// Ask answers one question from the project's indexed evidence. It never
// returns an error: retrieval failures degrade to an evidence-free answer
// and synthesis failures produce an answer whose Error field is set.
func (r *ProjectRAG) Ask(ctx context.Context, query string) domain.Answer {
	logger.Info("Processing query for %s: %s", r.project.Name, query)

	hash := queryHash(query)

	if cached, ok, err := r.b.Answers.Get(ctx, r.project.Namespace, hash); err == nil && ok {
		logger.Debug("Answer cache hit for %s", r.project.Name)
		return *cached
	}

	chunks := r.retrieve(ctx, query, hash, r.topK)
	return r.synthesize(ctx, query, hash, chunks)
}

// Retrieve returns the top-k chunks for a query without synthesis.
func (r *ProjectRAG) Retrieve(ctx context.Context, query string, k int) []domain.RetrievedChunk {
	if k <= 0 {
		k = r.topK
	}
	return r.retrieve(ctx, query, queryHash(query), k)
}

// retrieve runs cached similarity search. Failures degrade to an empty
// result; "no evidence" is a normal outcome, not an error.
func (r *ProjectRAG) retrieve(ctx context.Context, query, hash string, k int) []domain.RetrievedChunk {
	if cached, ok, err := r.b.QueryCache.Get(ctx, r.project.Namespace, hash); err == nil && ok {
		logger.Debug("Query cache hit for %s", r.project.Name)
		return cached
	}

	var chunks []domain.RetrievedChunk
	err := ratelimit.Retry(ctx, ratelimit.DefaultAttempts, func() error {
		if err := r.embedLimit.Wait(ctx); err != nil {
			return err
		}
		embedding, err := r.b.Embedder.Embed(ctx, query)
		if err != nil {
			return err
		}
		chunks, err = r.b.Index.Search(ctx, r.project.Namespace, embedding, k)
		return err
	})
	if err != nil {
		logger.Warn("%v for %s: %v", domain.ErrRetrievalUnavailable, r.project.Name, err)
		return nil
	}

	if err := r.b.QueryCache.Put(ctx, r.project.Namespace, hash, chunks); err != nil {
		logger.Warn("Failed to cache query result for %s: %v", r.project.Name, err)
	}
	return chunks
}

// synthesize formats the retrieved chunks into a numbered context block
// and issues one completion. The answer is cached only on success.
func (r *ProjectRAG) synthesize(ctx context.Context, query, hash string, chunks []domain.RetrievedChunk) domain.Answer {
	var contextBlock strings.Builder
	var sources []string
	for i, chunk := range chunks {
		fmt.Fprintf(&contextBlock, "[CHUNK %d] %s\n\n", i+1, chunk.Content)
		if name := chunk.Metadata.FileName; name != "" && !contains(sources, name) {
			sources = append(sources, name)
		}
	}
	formatted := contextBlock.String()
	if formatted == "" {
		formatted = noEvidenceContext
	}

	system, err := r.b.Prompts.Load(driven.PromptAskSystem)
	if err != nil {
		return errorAnswer(fmt.Errorf("load prompt: %w", err))
	}

	user := fmt.Sprintf("Query: %s\n\nContext from project documents:\n%s", query, formatted)

	text, err := r.complete(ctx, system, user, askTemperature)
	if err != nil {
		logger.Warn("Synthesis failed for %s: %v", r.project.Name, err)
		return errorAnswer(fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err))
	}

	answer := domain.Answer{
		Text:        text,
		Sources:     sources,
		ContextUsed: len(chunks),
		Timestamp:   time.Now().UTC(),
	}
	if err := r.b.Answers.Put(ctx, r.project.Namespace, hash, answer); err != nil {
		logger.Warn("Failed to cache answer for %s: %v", r.project.Name, err)
	}
	return answer
}

// complete issues one rate-limited, retried completion.
func (r *ProjectRAG) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	var text string
	err := ratelimit.Retry(ctx, ratelimit.DefaultAttempts, func() error {
		if err := r.completeLimit.Wait(ctx); err != nil {
			return err
		}
		var completeErr error
		text, completeErr = r.b.LLM.Complete(ctx, system, user, driven.CompleteOptions{
			Temperature: temperature,
		})
		return completeErr
	})
	return text, err
}

// ==================== Assessment ====================

// yesNoSuffix rewrites a criterion question into its yes/no-forcing form.
const yesNoSuffix = "Answer with 'Yes' or 'No' first, then provide supporting evidence."

// noActionNeeded marks a selection criterion that passed.
const noActionNeeded = "No action needed."

// CheckEligibility evaluates every criterion in definition order. All
// criteria are evaluated even after a failure, so the summary can name
// every failing one.
func (r *ProjectRAG) CheckEligibility(ctx context.Context, criteria []domain.Criterion) *domain.EligibilityResult {
	defer logger.Timed("eligibility check for " + r.project.Name)()
	result := &domain.EligibilityResult{
		Project:   r.project.Name,
		Eligible:  true,
		Timestamp: time.Now().UTC(),
	}

	for _, criterion := range criteria {
		logger.Info("Checking criterion %q for %s", criterion.Name, r.project.Name)
		result.Criteria = append(result.Criteria, r.evaluateCriterion(ctx, criterion))
	}

	for _, cr := range result.Criteria {
		if !cr.Met {
			result.Eligible = false
		}
	}
	result.Summary = criteriaSummary(r.project.Name, result.Criteria, result.Eligible, "eligibility")
	return result
}

// CheckSelection follows the eligibility protocol and additionally asks
// for a remedial action per failed criterion.
func (r *ProjectRAG) CheckSelection(ctx context.Context, criteria []domain.Criterion) *domain.SelectionResult {
	defer logger.Timed("selection check for " + r.project.Name)()
	result := &domain.SelectionResult{
		Project:   r.project.Name,
		Selected:  true,
		Timestamp: time.Now().UTC(),
	}

	for _, criterion := range criteria {
		logger.Info("Checking criterion %q for %s", criterion.Name, r.project.Name)
		cr := r.evaluateCriterion(ctx, criterion)

		if cr.Met {
			cr.ActionNeeded = noActionNeeded
		} else {
			action := r.Ask(ctx, fmt.Sprintf(
				"The project does not meet the following criterion: '%s'. "+
					"What specific actions should be taken to meet this requirement?",
				criterion.Question))
			cr.ActionNeeded = strings.TrimSpace(action.Text)
		}
		result.Criteria = append(result.Criteria, cr)
	}

	for _, cr := range result.Criteria {
		if !cr.Met {
			result.Selected = false
		}
	}
	result.Summary = criteriaSummary(r.project.Name, result.Criteria, result.Selected, "selection")
	return result
}

// evaluateCriterion asks one yes/no-forced question and classifies the
// answer by its first token.
func (r *ProjectRAG) evaluateCriterion(ctx context.Context, criterion domain.Criterion) domain.CriterionResult {
	question := fmt.Sprintf("Based on the project documents, %s %s", criterion.Question, yesNoSuffix)

	answer := r.Ask(ctx, question)
	text := strings.TrimSpace(answer.Text)

	return domain.CriterionResult{
		Name:     criterion.Name,
		Question: criterion.Question,
		Answer:   text,
		Met:      startsWithYes(text),
		Sources:  answer.Sources,
	}
}

// startsWithYes reports whether the answer's first token is "yes",
// case-insensitively. Punctuation directly after the token is tolerated.
func startsWithYes(answer string) bool {
	token := strings.ToLower(answer)
	if i := strings.IndexFunc(token, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}); i >= 0 {
		token = token[:i]
	}
	return token == "yes"
}

// criteriaSummary produces the deterministic summary string naming every
// failing criterion in evaluation order.
func criteriaSummary(project string, criteria []domain.CriterionResult, allMet bool, kind string) string {
	if allMet {
		return fmt.Sprintf("Project '%s' meets all %s criteria.", project, kind)
	}
	var failed []string
	for _, cr := range criteria {
		if !cr.Met {
			failed = append(failed, cr.Name)
		}
	}
	return fmt.Sprintf("Project '%s' does not meet the following criteria: %s.",
		project, strings.Join(failed, ", "))
}

// GenerateReport answers every question in order. Each answer inherits
// Ask's caching and failure containment.
func (r *ProjectRAG) GenerateReport(ctx context.Context, questions []string) *domain.Report {
	report := &domain.Report{
		Project:   r.project.Name,
		Timestamp: time.Now().UTC(),
	}

	for _, question := range questions {
		logger.Info("Answering report question for %s: %s", r.project.Name, question)
		answer := r.Ask(ctx, question)
		report.Sections = append(report.Sections, domain.ReportSection{
			Question: question,
			Answer:   answer.Text,
			Sources:  answer.Sources,
		})
	}
	return report
}

// GenerateRecommendation synthesises a funding recommendation from the
// eligibility breakdown and the detailed report.
func (r *ProjectRAG) GenerateRecommendation(ctx context.Context, eligibility *domain.EligibilityResult, report *domain.Report) *domain.Recommendation {
	rec := &domain.Recommendation{
		Project:   r.project.Name,
		Timestamp: time.Now().UTC(),
	}

	system, err := r.b.Prompts.Load(driven.PromptRecommendSystem)
	if err != nil {
		rec.Decision = domain.DecisionPending
		rec.Rationale = "Error generating recommendation."
		rec.Error = fmt.Sprintf("load prompt: %v", err)
		return rec
	}

	user := "Based on the following project assessment, provide a donor recommendation that includes:\n" +
		"1. Funding decision (Must start with DECISION: followed by Fund/Do Not Fund/Partially Fund)\n" +
		"2. Executive summary (2-3 sentences)\n" +
		"3. Key strengths and weaknesses\n" +
		"4. Risks and mitigations\n" +
		"5. Expected impact if funded\n" +
		"6. Any conditions or special considerations\n\n" +
		recommendationContext(r.project.Name, eligibility, report)

	text, err := r.complete(ctx, system, user, recommendTemperature)
	if err != nil {
		logger.Warn("Recommendation failed for %s: %v", r.project.Name, err)
		rec.Decision = domain.DecisionPending
		rec.Rationale = "Error generating recommendation."
		rec.Error = err.Error()
		return rec
	}

	rec.Decision, rec.Rationale = domain.ParseRecommendation(text)
	return rec
}

// recommendationContext flattens the eligibility result and report into
// one text block for the recommendation prompt.
func recommendationContext(project string, eligibility *domain.EligibilityResult, report *domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project Name: %s\n\n", project)

	b.WriteString("ELIGIBILITY ASSESSMENT:\n")
	if eligibility != nil {
		fmt.Fprintf(&b, "Overall Eligibility: %t\n", eligibility.Eligible)
		for _, cr := range eligibility.Criteria {
			verdict := "Does not meet criterion"
			if cr.Met {
				verdict = "Meets criterion"
			}
			fmt.Fprintf(&b, "- %s: %s\n", cr.Name, verdict)
			fmt.Fprintf(&b, "  Question: %s\n", cr.Question)
			fmt.Fprintf(&b, "  Answer: %s\n\n", cr.Answer)
		}
	}

	b.WriteString("DETAILED REPORT:\n")
	if report != nil {
		for _, section := range report.Sections {
			fmt.Fprintf(&b, "Question: %s\n", section.Question)
			fmt.Fprintf(&b, "Answer: %s\n\n", section.Answer)
		}
	}
	return b.String()
}

// ==================== Helpers ====================

// queryHash derives the deterministic cache key for a query string.
func queryHash(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

func errorAnswer(err error) domain.Answer {
	return domain.Answer{
		Text:      fmt.Sprintf("Error generating response: %v", err),
		Timestamp: time.Now().UTC(),
		Error:     err.Error(),
	}
}

func failedOutcome(rel, full string, err error) domain.FileOutcome {
	return domain.FileOutcome{
		File:     rel,
		FullPath: full,
		Status:   domain.FileFailed,
		Error:    err.Error(),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
