package flow

import (
	"testing"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDefinition mirrors the household-survey fixture used by the builder UI:
// six sections, a consent branch in section 1 that can jump straight to
// section 3, an age branch in section 3 that can jump to section 6, and an
// end_survey action on section 5.
func testDefinition() *Definition {
	return NewDefinition([]Section{
		{
			ID: "section-1", OrderNum: 1, Title: "Consentimiento",
			Questions: []Question{
				{
					ID: "question-1", Type: models.TypeMultipleChoice,
					Text: "¿Participa en el programa?", Options: []string{"Sí", "No"},
					Config: models.QuestionConfig{SkipLogic: &models.QuestionSkipLogic{
						Enabled: true,
						Rules: []models.SkipRule{{
							QuestionID: "question-1", Operator: models.OpEquals, Value: "Sí",
							TargetSectionID: "section-3", TargetQuestionID: "question-3", Enabled: true,
						}},
					}},
				},
			},
		},
		{
			ID: "section-2", OrderNum: 2, Title: "Registro",
			Questions: []Question{
				{ID: "question-2", Type: models.TypeText, Text: "¿Cómo se enteró del programa?"},
			},
		},
		{
			ID: "section-3", OrderNum: 3, Title: "Datos personales",
			Questions: []Question{
				{ID: "question-3", Type: models.TypeText, Text: "Nombre completo"},
				{
					ID: "question-4", Type: models.TypeNumber, Text: "¿Cuántos años tienes?",
					Config: models.QuestionConfig{SkipLogic: &models.QuestionSkipLogic{
						Enabled: true,
						Rules: []models.SkipRule{{
							QuestionID: "question-4", Operator: models.OpGreaterThan, Value: "18",
							TargetSectionID: "section-6", Enabled: true,
						}},
					}},
				},
			},
		},
		{
			ID: "section-4", OrderNum: 4, Title: "Tutor legal",
			Questions: []Question{
				{ID: "question-5", Type: models.TypeText, Text: "Nombre del tutor"},
			},
		},
		{
			ID: "section-5", OrderNum: 5, Title: "Cierre anticipado",
			SkipLogic: &models.SectionSkipLogic{Enabled: true, Action: models.ActionEndSurvey},
			Questions: []Question{
				{ID: "question-6", Type: models.TypeText, Text: "Comentarios"},
			},
		},
		{
			ID: "section-6", OrderNum: 6, Title: "Preferencias",
			Questions: []Question{
				{ID: "question-7", Type: models.TypeCheckbox, Text: "¿Qué frutas consume?",
					Options: []string{"Manzana", "Plátano", "Pera"}},
			},
		},
	})
}

func TestWalkerStartsAtFirstQuestion(t *testing.T) {
	w := NewWalker(testDefinition())
	require.False(t, w.Done())
	assert.Equal(t, Position{SectionIndex: 0, QuestionIndex: 0}, w.Position())
	assert.Equal(t, "question-1", w.Current().ID)
}

func TestWalkerConsentBranchSkipsSection2(t *testing.T) {
	w := NewWalker(testDefinition())

	w.Answer("Sí")

	require.False(t, w.Done())
	assert.Equal(t, "question-3", w.Current().ID, "Sí must land directly on section 3's question-3")
	assert.Equal(t, 2, w.Position().SectionIndex)
}

func TestWalkerConsentFallThroughVisitsSection2(t *testing.T) {
	w := NewWalker(testDefinition())

	w.Answer("No")

	require.False(t, w.Done())
	assert.Equal(t, "question-2", w.Current().ID, "No must fall through to linear advance")
	assert.Equal(t, 1, w.Position().SectionIndex)
}

func TestWalkerAgeBranch(t *testing.T) {
	t.Run("adult jumps to section 6", func(t *testing.T) {
		w := NewWalker(testDefinition())
		w.Answer("Sí")    // -> question-3
		w.Answer("Lucía") // -> question-4
		require.Equal(t, "question-4", w.Current().ID)

		w.Answer("20")

		require.False(t, w.Done())
		assert.Equal(t, "question-7", w.Current().ID)
		assert.Equal(t, 5, w.Position().SectionIndex)
	})

	t.Run("minor falls through to the next section", func(t *testing.T) {
		w := NewWalker(testDefinition())
		w.Answer("Sí")
		w.Answer("Lucía")

		w.Answer("15")

		require.False(t, w.Done())
		assert.Equal(t, "question-5", w.Current().ID, "15 does not match greater_than 18")
		assert.Equal(t, 3, w.Position().SectionIndex)
	})
}

func TestWalkerEndSurveyActionTerminates(t *testing.T) {
	w := NewWalker(testDefinition())
	w.Answer("No")     // section 2
	w.Answer("radio")  // -> question-3
	w.Answer("Lucía")  // -> question-4
	w.Answer("15")     // minor -> section 4
	w.Answer("Carlos") // tutor -> section 5
	require.Equal(t, "question-6", w.Current().ID)

	pos := w.Answer("ninguno")

	assert.True(t, pos.IsEnd(), "end_survey must terminate even though section 6 remains")
	assert.True(t, w.Done())
	assert.Nil(t, w.Current())
}

func TestWalkerCompletesOnLastSection(t *testing.T) {
	w := NewWalker(testDefinition())
	w.Answer("Sí")
	w.Answer("Lucía")
	w.Answer("20") // -> section 6

	pos := w.Answer([]string{"Manzana", "Plátano"})

	assert.True(t, pos.IsEnd())
	assert.Equal(t, []string{"Manzana", "Plátano"}, w.Answers()["question-7"])
}

func TestWalkerDanglingTargetFallsBackToLinear(t *testing.T) {
	def := NewDefinition([]Section{
		{ID: "s1", OrderNum: 1, Questions: []Question{
			{
				ID: "q1", Type: models.TypeMultipleChoice,
				Config: models.QuestionConfig{SkipLogic: &models.QuestionSkipLogic{
					Enabled: true,
					Rules: []models.SkipRule{{
						Operator: models.OpEquals, Value: "Sí",
						TargetQuestionID: "deleted-question", Enabled: true,
					}},
				}},
			},
			{ID: "q2", Type: models.TypeText},
		}},
	})
	w := NewWalker(def)

	w.Answer("Sí")

	require.False(t, w.Done())
	assert.Equal(t, "q2", w.Current().ID, "dangling target must degrade to linear advance")
}

func TestWalkerSkipsHiddenQuestions(t *testing.T) {
	def := NewDefinition([]Section{
		{ID: "s1", OrderNum: 1, Questions: []Question{
			{ID: "q1", Type: models.TypeMultipleChoice, Options: []string{"Sí", "No"}},
			{
				ID: "q2", Type: models.TypeText,
				Config: models.QuestionConfig{DisplayLogic: &models.DisplayLogic{
					Conditions: []models.DisplayCondition{{QuestionID: "q1", Operator: models.OpEquals, Value: "Sí"}},
				}},
			},
			{ID: "q3", Type: models.TypeText},
		}},
	})

	t.Run("condition met shows the question", func(t *testing.T) {
		w := NewWalker(def)
		w.Answer("Sí")
		assert.Equal(t, "q2", w.Current().ID)
	})

	t.Run("condition unmet hides the question", func(t *testing.T) {
		w := NewWalker(def)
		w.Answer("No")
		assert.Equal(t, "q3", w.Current().ID)
	})
}

func TestWalkerEmptySurveyIsDone(t *testing.T) {
	w := NewWalker(NewDefinition(nil))
	assert.True(t, w.Done())
	assert.True(t, w.Answer("anything").IsEnd())
}

func TestWalkerTerminatesOnJumpCycle(t *testing.T) {
	// Two empty sections pointing at each other through section skip logic.
	def := NewDefinition([]Section{
		{ID: "s1", OrderNum: 1, SkipLogic: &models.SectionSkipLogic{
			Enabled: true, Action: models.ActionSpecificSection, TargetSectionID: "s2",
		}},
		{ID: "s2", OrderNum: 2, SkipLogic: &models.SectionSkipLogic{
			Enabled: true, Action: models.ActionSpecificSection, TargetSectionID: "s1",
		}},
	})
	w := NewWalker(def)
	assert.True(t, w.Done(), "cyclic empty sections must settle to End, not loop")
}

func TestWalkerResume(t *testing.T) {
	def := testDefinition()
	answers := Answers{"question-1": "Sí", "question-3": "Lucía"}

	w := ResumeWalker(def, answers, Position{SectionIndex: 2, QuestionIndex: 1})

	require.False(t, w.Done())
	assert.Equal(t, "question-4", w.Current().ID)
	w.Answer("20")
	assert.Equal(t, "question-7", w.Current().ID)
}
