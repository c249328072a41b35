package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure ProgramStore implements the interface.
var _ driven.ProgramStore = (*ProgramStore)(nil)

// ProgramStore loads grant program definitions from a user-editable TOML
// file, falling back to the embedded catalog. Like the prompt store, the
// file is only written on first access.
type ProgramStore struct {
	mu       sync.RWMutex
	path     string
	programs map[string]domain.Program
	initOnce sync.Once
	initErr  error
}

// programsFile is the on-disk TOML layout.
type programsFile struct {
	Programs []domain.Program `toml:"programs"`
}

// defaultPrograms is the embedded grant program catalog.
func defaultPrograms() []domain.Program {
	return []domain.Program{
		{
			Name:        "Oxfam",
			Description: "Oxfam International humanitarian and development programs",
			EligibilityCriteria: []domain.Criterion{
				{Name: "Legal Entity", Question: "Is the applicant a legally registered entity with valid documentation?"},
				{Name: "Experience", Question: "Does the applicant have at least 3 years of experience in humanitarian or development work?"},
				{Name: "Financial Capacity", Question: "Does the applicant have sufficient financial capacity and adequate financial management systems?"},
				{Name: "Target Area", Question: "Is the project implemented in Oxfam's priority geographical areas?"},
				{Name: "Project Duration", Question: "Does the project duration fall within 12-36 months?"},
				{Name: "Gender Focus", Question: "Does the project incorporate gender equality principles?"},
				{Name: "Co-funding", Question: "Does the project secure at least a 15% co-funding?"},
			},
			ReportQuestions: []string{
				"What is the primary objective of this project?",
				"What problem does the project aim to solve?",
				"Who are the target beneficiaries and how many people will benefit?",
				"What is the total budget and how is it allocated across major categories?",
				"What are the key activities and timeline?",
				"How will the project measure success? What are the key performance indicators?",
				"How does the project promote gender equality?",
				"What risks have been identified and how will they be mitigated?",
				"Does the implementing organization have relevant experience for this project?",
				"Is there a sustainability plan for after the grant period ends?",
			},
		},
		{
			Name:        "F4J (Funding for Justice)",
			Description: "Funding for justice, human rights and legal empowerment projects",
			EligibilityCriteria: []domain.Criterion{
				{Name: "Legal Entity", Question: "Is the applicant a legally registered not-for-profit entity?"},
				{Name: "Experience", Question: "Does the applicant have at least 2 years of experience in rights-based work?"},
				{Name: "Human Rights Focus", Question: "Does the project explicitly address a human rights or justice issue?"},
				{Name: "Target Group", Question: "Does the project target marginalized or vulnerable populations?"},
				{Name: "Project Duration", Question: "Is the project duration between 6-24 months?"},
				{Name: "Budget Limit", Question: "Is the requested budget under $100,000?"},
				{Name: "Co-funding", Question: "Is the project able to provide at least 10% co-funding?"},
			},
			ReportQuestions: []string{
				"What human rights or justice issue does this project address?",
				"How will the project empower marginalized or vulnerable groups?",
				"What is the project's theory of change?",
				"What are the key activities and timeline?",
				"What is the total budget and how is it allocated?",
				"What measurable outcomes are expected?",
				"What risks have been identified and how will they be mitigated?",
				"What is the organization's experience with similar rights-based work?",
				"How will the project sustain its impact after the funding period?",
				"What advocacy or policy change components does the project include?",
			},
		},
		{
			Name:        "UNDP",
			Description: "United Nations Development Programme sustainable development grants",
			EligibilityCriteria: []domain.Criterion{
				{Name: "Legal Entity", Question: "Is the applicant a legally registered entity?"},
				{Name: "Alignment with SDGs", Question: "Does the project explicitly align with one or more SDGs?"},
				{Name: "Development Focus", Question: "Is the primary focus on sustainable development?"},
				{Name: "Local Implementation", Question: "Does the project have a local implementation strategy?"},
				{Name: "Project Duration", Question: "Is the project duration between 12-48 months?"},
				{Name: "Environmental Impact", Question: "Does the project demonstrate positive environmental impact?"},
				{Name: "Co-funding", Question: "Does the project secure at least 20% co-funding?"},
			},
			ReportQuestions: []string{
				"Which Sustainable Development Goals does this project address?",
				"What is the primary development challenge being addressed?",
				"What is the project's implementation strategy?",
				"Who are the main beneficiaries and stakeholders?",
				"What is the total budget and key budget allocations?",
				"What are the expected outcomes and impacts?",
				"How does the project promote environmental sustainability?",
				"What is the monitoring and evaluation framework?",
				"What partnerships are involved in this project?",
				"How will the project ensure long-term sustainability?",
			},
		},
	}
}

// NewProgramStore creates a new file-based program store.
// If configDir is empty, defaults to ~/.grantrag/programs.toml.
func NewProgramStore(configDir string) (*ProgramStore, error) {
	if configDir == "" {
		var err error
		configDir, err = DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	return &ProgramStore{
		path: filepath.Join(configDir, "programs.toml"),
	}, nil
}

// Programs returns all known program names, sorted.
func (s *ProgramStore) Programs() ([]string, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.programs))
	for name := range s.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns a program definition by name.
func (s *ProgramStore) Get(name string) (*domain.Program, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	program, ok := s.programs[name]
	if !ok {
		return nil, fmt.Errorf("program %q: %w", name, domain.ErrNotFound)
	}
	return &program, nil
}

// Path returns the programs file path.
func (s *ProgramStore) Path() string {
	return s.path
}

// init loads the catalog, writing defaults on first use.
func (s *ProgramStore) init() error {
	s.initOnce.Do(s.initialise)
	return s.initErr
}

func (s *ProgramStore) initialise() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		catalog := defaultPrograms()
		s.programs = indexPrograms(catalog)
		s.initErr = s.write(catalog)
		return
	}
	if err != nil {
		s.initErr = fmt.Errorf("read programs file: %w", err)
		return
	}

	var parsed programsFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		s.initErr = fmt.Errorf("parse programs file: %w", err)
		return
	}
	if len(parsed.Programs) == 0 {
		s.programs = indexPrograms(defaultPrograms())
		return
	}
	s.programs = indexPrograms(parsed.Programs)
}

func (s *ProgramStore) write(catalog []domain.Program) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(programsFile{Programs: catalog})
	if err != nil {
		return fmt.Errorf("marshal programs: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write programs file: %w", err)
	}
	return nil
}

func indexPrograms(catalog []domain.Program) map[string]domain.Program {
	programs := make(map[string]domain.Program, len(catalog))
	for _, p := range catalog {
		programs[p.Name] = p
	}
	return programs
}
