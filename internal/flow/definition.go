// Package flow decides, given a respondent's answers so far and the branching
// rules attached to questions and sections, which question or section comes
// next, or whether the survey ends. All evaluation is pure: functions take a
// snapshot of the definition and the answer set and never mutate either.
package flow

import (
	"fmt"
	"sort"

	"github.com/fieldscope/survey-service/internal/models"
)

// Question is the evaluation-side view of a persisted question: options and
// config already decoded from their jsonb columns.
type Question struct {
	ID       string
	Type     models.QuestionType
	Text     string
	Options  []string
	Required bool
	Config   models.QuestionConfig
}

// Section is the evaluation-side view of a persisted section.
type Section struct {
	ID        string
	OrderNum  int
	Title     string
	SkipLogic *models.SectionSkipLogic
	Questions []Question
}

// Position is a concrete (section, question) cursor into a definition.
// The End sentinel marks survey completion.
type Position struct {
	SectionIndex  int
	QuestionIndex int
}

// End is the terminal position.
var End = Position{SectionIndex: -1, QuestionIndex: -1}

func (p Position) IsEnd() bool {
	return p.SectionIndex < 0
}

// Definition is an immutable, index-backed snapshot of a survey's sections
// and questions, ordered for traversal. Build one per respondent session or
// edit transaction; rebuild after any structural edit.
type Definition struct {
	Sections []Section

	sectionPos  map[string]int
	questionPos map[string]Position
}

// NewDefinition assembles a definition from already-decoded sections. Sections
// are ordered by OrderNum, questions by their slice order within each section.
func NewDefinition(sections []Section) *Definition {
	sorted := make([]Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderNum < sorted[j].OrderNum
	})

	def := &Definition{
		Sections:    sorted,
		sectionPos:  make(map[string]int, len(sorted)),
		questionPos: make(map[string]Position),
	}
	for si, sec := range sorted {
		def.sectionPos[sec.ID] = si
		for qi, q := range sec.Questions {
			def.questionPos[q.ID] = Position{SectionIndex: si, QuestionIndex: qi}
		}
	}
	return def
}

// ParseDefinition decodes a persisted survey into a Definition, validating the
// jsonb logic columns at the boundary so evaluation never deals with raw JSON.
func ParseDefinition(survey *models.Survey) (*Definition, error) {
	sections := make([]Section, 0, len(survey.Sections))
	for _, sec := range survey.Sections {
		skipLogic, err := models.ParseSectionSkipLogic(sec.SkipLogic)
		if err != nil {
			return nil, fmt.Errorf("section %s: invalid skip logic: %w", sec.ID, err)
		}

		questions := make([]Question, 0, len(sec.Questions))
		ordered := make([]models.Question, len(sec.Questions))
		copy(ordered, sec.Questions)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].OrderNum < ordered[j].OrderNum
		})

		for _, q := range ordered {
			cfg, err := models.ParseQuestionConfig(q.Config)
			if err != nil {
				return nil, fmt.Errorf("question %s: invalid config: %w", q.ID, err)
			}
			opts, err := models.ParseOptions(q.Options)
			if err != nil {
				return nil, fmt.Errorf("question %s: invalid options: %w", q.ID, err)
			}
			questions = append(questions, Question{
				ID:       q.ID,
				Type:     q.Type,
				Text:     q.Text,
				Options:  opts,
				Required: q.Required,
				Config:   cfg,
			})
		}

		sections = append(sections, Section{
			ID:        sec.ID,
			OrderNum:  sec.OrderNum,
			Title:     sec.Title,
			SkipLogic: skipLogic,
			Questions: questions,
		})
	}
	return NewDefinition(sections), nil
}

// SectionAt returns the section at index, or nil when out of range.
func (d *Definition) SectionAt(i int) *Section {
	if i < 0 || i >= len(d.Sections) {
		return nil
	}
	return &d.Sections[i]
}

// QuestionAt returns the question at pos, or nil when out of range or End.
func (d *Definition) QuestionAt(pos Position) *Question {
	sec := d.SectionAt(pos.SectionIndex)
	if sec == nil || pos.QuestionIndex < 0 || pos.QuestionIndex >= len(sec.Questions) {
		return nil
	}
	return &sec.Questions[pos.QuestionIndex]
}

// PositionOf looks up a question id.
func (d *Definition) PositionOf(questionID string) (Position, bool) {
	pos, ok := d.questionPos[questionID]
	return pos, ok
}

// SectionIndexOf looks up a section id.
func (d *Definition) SectionIndexOf(sectionID string) (int, bool) {
	i, ok := d.sectionPos[sectionID]
	return i, ok
}

// Questions returns all questions flattened in traversal order.
func (d *Definition) Questions() []Question {
	var out []Question
	for _, sec := range d.Sections {
		out = append(out, sec.Questions...)
	}
	return out
}
