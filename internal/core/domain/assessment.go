package domain

import (
	"strings"
	"time"
)

// Answer is the result of asking one question against one project.
// It is always well formed: a failed language model call produces an Answer
// whose Error field is set and whose Sources are empty, never a panic or a
// propagated fault. An empty Sources list with an empty Error means the
// index held no evidence for the question.
type Answer struct {
	// Text is the synthesised answer.
	Text string `json:"answer"`

	// Sources lists cited source file names, deduplicated in
	// first-seen order.
	Sources []string `json:"sources"`

	// ContextUsed is the number of chunks supplied to the model.
	ContextUsed int `json:"context_used"`

	// Timestamp is when the answer was generated.
	Timestamp time.Time `json:"timestamp"`

	// Error carries the failure description when synthesis failed.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the answer represents a service failure rather
// than a normal (possibly evidence-free) response.
func (a Answer) Failed() bool { return a.Error != "" }

// CriterionResult is the evaluation of one named yes/no criterion.
type CriterionResult struct {
	// Name is the criterion name.
	Name string `json:"name"`

	// Question is the raw question text from the program definition.
	Question string `json:"question"`

	// Answer is the full model answer, beginning with Yes or No.
	Answer string `json:"answer"`

	// Met is true iff the answer's first token is "yes", case-insensitively.
	Met bool `json:"meets_criterion"`

	// Sources lists the cited source files.
	Sources []string `json:"sources"`

	// ActionNeeded is the remediation suggestion for a failed selection
	// criterion. Criteria that pass carry "No action needed.".
	ActionNeeded string `json:"action_needed,omitempty"`
}

// EligibilityResult is the outcome of an eligibility check for one project.
type EligibilityResult struct {
	// Project is the project name.
	Project string `json:"project_name"`

	// Criteria holds per-criterion evaluations in definition order.
	Criteria []CriterionResult `json:"criteria"`

	// Eligible is the logical AND across all criteria.
	Eligible bool `json:"eligible"`

	// Summary is a deterministic human-readable summary naming every
	// failing criterion in evaluation order.
	Summary string `json:"summary"`

	// Timestamp is when the check ran.
	Timestamp time.Time `json:"timestamp"`
}

// SelectionResult is the outcome of a selection check for one project.
// It follows the eligibility protocol and additionally records a
// remediation suggestion per failed criterion.
type SelectionResult struct {
	// Project is the project name.
	Project string `json:"project_name"`

	// Criteria holds per-criterion evaluations in definition order.
	Criteria []CriterionResult `json:"criteria"`

	// Selected is the logical AND across all criteria.
	Selected bool `json:"selected"`

	// Summary names every failing criterion in evaluation order.
	Summary string `json:"summary"`

	// Timestamp is when the check ran.
	Timestamp time.Time `json:"timestamp"`
}

// ReportSection is one (question, answer, sources) triple of a report.
type ReportSection struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// Report is a per-project detailed report.
type Report struct {
	// Project is the project name.
	Project string `json:"project_name"`

	// Sections holds answers in question order.
	Sections []ReportSection `json:"sections"`

	// Timestamp is when the report was generated.
	Timestamp time.Time `json:"timestamp"`
}

// FundingDecision is the closed set of recommendation outcomes.
type FundingDecision string

const (
	// DecisionFund recommends full funding.
	DecisionFund FundingDecision = "Fund"

	// DecisionDoNotFund recommends against funding.
	DecisionDoNotFund FundingDecision = "Do Not Fund"

	// DecisionPartiallyFund recommends partial funding.
	DecisionPartiallyFund FundingDecision = "Partially Fund"

	// DecisionPending marks a recommendation whose decision line could
	// not be classified. The full response is kept as the rationale.
	DecisionPending FundingDecision = "Pending"
)

// decisionPrefix is the mandated first-line prefix of a recommendation.
const decisionPrefix = "DECISION:"

// ParseRecommendation splits a raw model response into a funding decision
// and the remaining rationale. A first line matching "DECISION: <x>" with a
// known decision yields that decision and strips the line; anything else
// yields DecisionPending with the entire response preserved as rationale.
func ParseRecommendation(raw string) (FundingDecision, string) {
	firstLine, rest, found := strings.Cut(raw, "\n")
	firstLine = strings.TrimSpace(firstLine)

	if !strings.HasPrefix(firstLine, decisionPrefix) {
		return DecisionPending, raw
	}

	decision := strings.TrimSpace(strings.TrimPrefix(firstLine, decisionPrefix))
	switch FundingDecision(decision) {
	case DecisionFund, DecisionDoNotFund, DecisionPartiallyFund:
		if !found {
			rest = ""
		}
		return FundingDecision(decision), strings.TrimSpace(rest)
	default:
		return DecisionPending, raw
	}
}

// Recommendation is the funding recommendation for one project.
type Recommendation struct {
	// Project is the project name.
	Project string `json:"project_name"`

	// Decision is the parsed funding decision.
	Decision FundingDecision `json:"funding_decision"`

	// Rationale is the free-text recommendation body.
	Rationale string `json:"recommendation"`

	// Timestamp is when the recommendation was generated.
	Timestamp time.Time `json:"timestamp"`

	// Error carries the failure description when synthesis failed.
	Error string `json:"error,omitempty"`
}

// ChatResult is the outcome of a multi-project chat: per-project answers
// plus one synthesised comparison.
type ChatResult struct {
	// Responses maps project name to that project's answer.
	Responses map[string]Answer `json:"responses"`

	// Comparison is the cross-project synthesis.
	Comparison string `json:"comparison"`

	// Timestamp is when the chat ran.
	Timestamp time.Time `json:"timestamp"`
}

// ComparativeAnalysis is a cross-project analysis result. Its failure mode
// is always a data value: an Error field with a timestamp, never a fault,
// because it is invoked from interactive contexts that must keep rendering.
type ComparativeAnalysis struct {
	// Summaries maps project name to that project's summary answer.
	Summaries map[string]Answer `json:"responses"`

	// Comparison is the synthesised cross-project narrative.
	Comparison string `json:"comparison"`

	// ProjectsCompared lists the projects included, sorted.
	ProjectsCompared []string `json:"projects_compared"`

	// Timestamp is when the analysis ran.
	Timestamp time.Time `json:"timestamp"`

	// Error carries the failure description when the analysis could not run.
	Error string `json:"error,omitempty"`
}
