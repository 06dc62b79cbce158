package flow

import (
	"testing"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remapFixture() []Question {
	return []Question{
		{
			ID: "q1", Type: models.TypeMultipleChoice,
			Config: models.QuestionConfig{SkipLogic: &models.QuestionSkipLogic{
				Enabled: true,
				Rules: []models.SkipRule{
					{QuestionID: "q1", Operator: models.OpEquals, Value: "Sí", TargetQuestionID: "q3", Enabled: true},
					{QuestionID: "q1", Operator: models.OpEquals, Value: "No", TargetQuestionID: "q4", Enabled: true},
				},
			}},
		},
		{
			ID: "q2", Type: models.TypeText,
			Config: models.QuestionConfig{DisplayLogic: &models.DisplayLogic{
				Conditions: []models.DisplayCondition{
					{QuestionID: "q3", Operator: models.OpEquals, Value: "x"},
					{QuestionID: "q1", Operator: models.OpEquals, Value: "Sí"},
				},
			}},
		},
		{ID: "q3", Type: models.TypeText},
		{ID: "q4", Type: models.TypeText},
	}
}

func TestRemapReferences(t *testing.T) {
	t.Run("rewrites skip and display references", func(t *testing.T) {
		questions := remapFixture()

		RemapReferences("q3", "q3-copy", questions)

		assert.Equal(t, "q3-copy", questions[0].Config.SkipLogic.Rules[0].TargetQuestionID)
		assert.Equal(t, "q3-copy", questions[1].Config.DisplayLogic.Conditions[0].QuestionID)
	})

	t.Run("does not touch references to other ids", func(t *testing.T) {
		questions := remapFixture()

		RemapReferences("q3", "q3-copy", questions)

		assert.Equal(t, "q4", questions[0].Config.SkipLogic.Rules[1].TargetQuestionID)
		assert.Equal(t, "q1", questions[0].Config.SkipLogic.Rules[0].QuestionID)
		assert.Equal(t, "q1", questions[1].Config.DisplayLogic.Conditions[1].QuestionID)
	})

	t.Run("is idempotent", func(t *testing.T) {
		once := remapFixture()
		RemapReferences("q3", "q3-copy", once)

		twice := remapFixture()
		RemapReferences("q3", "q3-copy", twice)
		RemapReferences("q3", "q3-copy", twice)

		assert.Equal(t, once, twice)
	})

	t.Run("same id remap is a no-op", func(t *testing.T) {
		questions := remapFixture()
		RemapReferences("q3", "q3", questions)
		assert.Equal(t, remapFixture(), questions)
	})
}

func TestBuildReferenceMap(t *testing.T) {
	def := NewDefinition([]Section{
		{ID: "s1", OrderNum: 1, Questions: remapFixture()[:2]},
		{ID: "s2", OrderNum: 2, Questions: remapFixture()[2:]},
	})

	rm := BuildReferenceMap(def)

	require.Len(t, rm, 4)
	assert.Equal(t, "s1", rm["q1"].SectionID)
	assert.Equal(t, "s2", rm["q3"].SectionID)

	// q3 is referenced by q1's skip rules and q2's display conditions.
	assert.Equal(t, []string{"q1"}, rm["q3"].SkipRefs)
	assert.Equal(t, []string{"q2"}, rm["q3"].DisplayRefs)

	// q1 references itself as a rule source and is referenced by q2's display logic.
	assert.Equal(t, []string{"q1"}, rm["q1"].SkipRefs)
	assert.Equal(t, []string{"q2"}, rm["q1"].DisplayRefs)
}

func TestBuildReferenceMapTracksLineage(t *testing.T) {
	def := NewDefinition([]Section{{ID: "s1", OrderNum: 1, Questions: []Question{
		{ID: "q1-copy", Config: models.QuestionConfig{OriginalID: "q1"}},
		{ID: "q2"},
	}}})

	rm := BuildReferenceMap(def)

	assert.Equal(t, "q1", rm["q1-copy"].OriginalID)
	assert.Equal(t, "q2", rm["q2"].OriginalID, "questions without lineage use their own id")
}

func TestValidateReferences(t *testing.T) {
	t.Run("clean definition has no issues", func(t *testing.T) {
		def := NewDefinition([]Section{
			{ID: "s1", OrderNum: 1, Questions: remapFixture()},
		})
		assert.Empty(t, ValidateReferences(def))
	})

	t.Run("dangling skip target is reported", func(t *testing.T) {
		def := NewDefinition([]Section{{ID: "s1", OrderNum: 1, Questions: []Question{
			{ID: "q1", Config: models.QuestionConfig{SkipLogic: &models.QuestionSkipLogic{
				Enabled: true,
				Rules:   []models.SkipRule{{Operator: models.OpEquals, Value: "x", TargetQuestionID: "gone", Enabled: true}},
			}}},
		}}})

		issues := ValidateReferences(def)
		require.Len(t, issues, 1)
		assert.Equal(t, "skip_logic", issues[0].Concern)
		assert.Equal(t, "gone", issues[0].MissingID)
		assert.Equal(t, "q1", issues[0].QuestionID)
		assert.Equal(t, 0, issues[0].RuleIndex)
	})

	t.Run("dangling display condition is reported", func(t *testing.T) {
		def := NewDefinition([]Section{{ID: "s1", OrderNum: 1, Questions: []Question{
			{ID: "q1", Config: models.QuestionConfig{DisplayLogic: &models.DisplayLogic{
				Conditions: []models.DisplayCondition{{QuestionID: "gone", Operator: models.OpEquals, Value: "x"}},
			}}},
		}}})

		issues := ValidateReferences(def)
		require.Len(t, issues, 1)
		assert.Equal(t, "display_logic", issues[0].Concern)
	})

	t.Run("dangling section-level target is reported", func(t *testing.T) {
		def := NewDefinition([]Section{{ID: "s1", OrderNum: 1, SkipLogic: &models.SectionSkipLogic{
			Enabled: true, Action: models.ActionSpecificSection, TargetSectionID: "gone",
		}}})

		issues := ValidateReferences(def)
		require.Len(t, issues, 1)
		assert.Equal(t, "section_skip_logic", issues[0].Concern)
		assert.Equal(t, "s1", issues[0].SectionID)
	})

	t.Run("disabled logic is not validated", func(t *testing.T) {
		def := NewDefinition([]Section{{ID: "s1", OrderNum: 1, Questions: []Question{
			{ID: "q1", Config: models.QuestionConfig{SkipLogic: &models.QuestionSkipLogic{
				Enabled: false,
				Rules:   []models.SkipRule{{Operator: models.OpEquals, Value: "x", TargetQuestionID: "gone", Enabled: true}},
			}}},
		}}})
		assert.Empty(t, ValidateReferences(def))
	})
}
