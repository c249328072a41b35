package domain

import "sort"

// Criterion is a named yes/no question used to gate eligibility or selection.
type Criterion struct {
	// Name is the criterion name (e.g. "Legal Entity").
	Name string `json:"name" toml:"name"`

	// Question is the yes/no question evaluated against project documents.
	Question string `json:"question" toml:"question"`
}

// Program is a grant program definition: the ordered criteria a project is
// gated on and the questions a detailed report answers. The core consumes
// these as opaque input and does not validate their content.
type Program struct {
	// Name is the program name (e.g. "Oxfam").
	Name string `json:"name" toml:"name"`

	// Description is a one-line program description.
	Description string `json:"description" toml:"description"`

	// EligibilityCriteria are evaluated in order; all are always evaluated.
	EligibilityCriteria []Criterion `json:"eligibility_criteria" toml:"eligibility_criteria"`

	// ReportQuestions are answered in order by detailed reports.
	ReportQuestions []string `json:"report_questions" toml:"report_questions"`
}

// Session is the explicit application state passed into operations, with
// its own persistence boundary. It replaces ambient global lookup: every
// field is a plain serialisable record that can be saved and reloaded
// without re-running retrieval.
type Session struct {
	// SelectedProgram is the active program name.
	SelectedProgram string `json:"selected_program,omitempty"`

	// SelectedProjects are the project names under assessment.
	SelectedProjects []string `json:"selected_projects,omitempty"`

	// Eligibility maps project name to its latest eligibility result.
	Eligibility map[string]EligibilityResult `json:"eligibility_results,omitempty"`

	// Selection maps project name to its latest selection result.
	Selection map[string]SelectionResult `json:"selection_results,omitempty"`

	// Reports maps project name to its latest detailed report.
	Reports map[string]Report `json:"reports,omitempty"`

	// Recommendations maps project name to its latest recommendation.
	Recommendations map[string]Recommendation `json:"recommendations,omitempty"`

	// Comparative is the latest comparative analysis, if any.
	Comparative *ComparativeAnalysis `json:"comparative_analysis,omitempty"`
}

// NewSession returns an empty session with initialised result maps.
func NewSession() *Session {
	s := &Session{}
	s.EnsureMaps()
	return s
}

// EnsureMaps initialises any nil result maps. Call after deserialising a
// session so writes never hit a nil map.
func (s *Session) EnsureMaps() {
	if s.Eligibility == nil {
		s.Eligibility = make(map[string]EligibilityResult)
	}
	if s.Selection == nil {
		s.Selection = make(map[string]SelectionResult)
	}
	if s.Reports == nil {
		s.Reports = make(map[string]Report)
	}
	if s.Recommendations == nil {
		s.Recommendations = make(map[string]Recommendation)
	}
}

// EligibleProjects returns the names of projects whose latest eligibility
// result passed, sorted.
func (s *Session) EligibleProjects() []string {
	var names []string
	for name, res := range s.Eligibility {
		if res.Eligible {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
