package flow

import (
	"errors"
	"testing"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateOperator(t *testing.T) {
	tests := []struct {
		name      string
		op        models.Operator
		answer    any
		ruleValue string
		want      bool
	}{
		{"equals match", models.OpEquals, "Sí", "Sí", true},
		{"equals is case sensitive", models.OpEquals, "sí", "Sí", false},
		{"equals on number answer", models.OpEquals, float64(18), "18", true},
		{"equals never matches multi-select", models.OpEquals, []string{"Sí"}, "Sí", false},
		{"not_equals match", models.OpNotEquals, "No", "Sí", true},
		{"not_equals non-match", models.OpNotEquals, "Sí", "Sí", false},
		{"contains substring", models.OpContains, "me gusta la manzana", "manzana", true},
		{"contains substring non-match", models.OpContains, "me gusta la pera", "manzana", false},
		{"contains checkbox member", models.OpContains, []string{"Manzana", "Plátano"}, "Manzana", true},
		{"contains checkbox non-member", models.OpContains, []string{"Manzana", "Plátano"}, "Pera", false},
		{"contains decoded json array", models.OpContains, []any{"Manzana", "Plátano"}, "Plátano", true},
		{"greater_than match", models.OpGreaterThan, "20", "18", true},
		{"greater_than non-match", models.OpGreaterThan, "15", "18", false},
		{"greater_than equal is non-match", models.OpGreaterThan, "18", "18", false},
		{"greater_than numeric answer", models.OpGreaterThan, float64(20), "18", true},
		{"greater_than non-numeric answer", models.OpGreaterThan, "abc", "18", false},
		{"greater_than non-numeric rule value", models.OpGreaterThan, "20", "dieciocho", false},
		{"less_than match", models.OpLessThan, "15", "18", true},
		{"less_than non-match", models.OpLessThan, "20", "18", false},
		{"unknown operator never matches", models.Operator("matches_regex"), "x", "x", false},
		{"nil answer never matches equals", models.OpEquals, nil, "Sí", false},
		{"nil answer never matches greater_than", models.OpGreaterThan, nil, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateOperator(tt.op, tt.answer, tt.ruleValue))
		})
	}
}

// Non-numeric answers must be a non-match for every rule value, not an error.
func TestGreaterThanNeverMatchesNonNumeric(t *testing.T) {
	for _, ruleValue := range []string{"0", "-1", "18", "99999", "abc", ""} {
		assert.False(t, EvaluateOperator(models.OpGreaterThan, "abc", ruleValue), "rule value %q", ruleValue)
	}
}

func questionWithRules(id string, rules ...models.SkipRule) Question {
	return Question{
		ID:   id,
		Type: models.TypeMultipleChoice,
		Config: models.QuestionConfig{
			SkipLogic: &models.QuestionSkipLogic{Enabled: true, Rules: rules},
		},
	}
}

func TestEvaluateQuestionAnswered(t *testing.T) {
	t.Run("nil config means no override", func(t *testing.T) {
		q := Question{ID: "q1"}
		assert.Nil(t, EvaluateQuestionAnswered(&q, "Sí"))
	})

	t.Run("disabled skip logic means no override", func(t *testing.T) {
		q := Question{ID: "q1", Config: models.QuestionConfig{
			SkipLogic: &models.QuestionSkipLogic{
				Enabled: false,
				Rules:   []models.SkipRule{{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s3", Enabled: true}},
			},
		}}
		assert.Nil(t, EvaluateQuestionAnswered(&q, "Sí"))
	})

	t.Run("no rule matches falls through", func(t *testing.T) {
		q := questionWithRules("q1",
			models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s3", Enabled: true},
		)
		assert.Nil(t, EvaluateQuestionAnswered(&q, "No"))
	})

	t.Run("first matching enabled rule wins", func(t *testing.T) {
		q := questionWithRules("q1",
			models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s2", Enabled: true},
			models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s5", Enabled: true},
		)
		target := EvaluateQuestionAnswered(&q, "Sí")
		require.NotNil(t, target)
		assert.Equal(t, KindSection, target.Kind)
		assert.Equal(t, "s2", target.SectionID)
	})

	t.Run("disabled rules are skipped", func(t *testing.T) {
		q := questionWithRules("q1",
			models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s2", Enabled: false},
			models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s5", Enabled: true},
		)
		target := EvaluateQuestionAnswered(&q, "Sí")
		require.NotNil(t, target)
		assert.Equal(t, "s5", target.SectionID)
	})

	t.Run("question target wins over section target", func(t *testing.T) {
		q := questionWithRules("q1",
			models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s3", TargetQuestionID: "question-3", Enabled: true},
		)
		target := EvaluateQuestionAnswered(&q, "Sí")
		require.NotNil(t, target)
		assert.Equal(t, KindQuestion, target.Kind)
		assert.Equal(t, "question-3", target.QuestionID)
		assert.Empty(t, target.SectionID)
	})

	t.Run("non-matching rules before the match do not affect the outcome", func(t *testing.T) {
		match := models.SkipRule{Operator: models.OpEquals, Value: "Sí", TargetSectionID: "s4", Enabled: true}
		nonMatchA := models.SkipRule{Operator: models.OpEquals, Value: "No", TargetSectionID: "s2", Enabled: true}
		nonMatchB := models.SkipRule{Operator: models.OpGreaterThan, Value: "10", TargetSectionID: "s3", Enabled: true}

		orderings := [][]models.SkipRule{
			{nonMatchA, nonMatchB, match},
			{nonMatchB, nonMatchA, match},
			{nonMatchA, match, nonMatchB},
			{match, nonMatchA, nonMatchB},
		}
		for _, rules := range orderings {
			q := questionWithRules("q1", rules...)
			target := EvaluateQuestionAnswered(&q, "Sí")
			require.NotNil(t, target)
			assert.Equal(t, "s4", target.SectionID)
		}
	})
}

func TestEvaluateSectionCompleted(t *testing.T) {
	def := NewDefinition([]Section{
		{ID: "s1", OrderNum: 1},
		{ID: "s2", OrderNum: 2},
		{ID: "s3", OrderNum: 3},
	})

	t.Run("no skip logic advances to next by order", func(t *testing.T) {
		target := EvaluateSectionCompleted(def.SectionAt(0), def)
		assert.Equal(t, NavigationTarget{Kind: KindSection, SectionID: "s2"}, target)
	})

	t.Run("last section with no skip logic ends the survey", func(t *testing.T) {
		target := EvaluateSectionCompleted(def.SectionAt(2), def)
		assert.Equal(t, NavigationTarget{Kind: KindEnd}, target)
	})

	t.Run("disabled skip logic behaves like next_section", func(t *testing.T) {
		sec := &Section{ID: "s1", SkipLogic: &models.SectionSkipLogic{Enabled: false, Action: models.ActionEndSurvey}}
		target := EvaluateSectionCompleted(sec, def)
		assert.Equal(t, NavigationTarget{Kind: KindSection, SectionID: "s2"}, target)
	})

	t.Run("end_survey terminates", func(t *testing.T) {
		sec := &Section{ID: "s1", SkipLogic: &models.SectionSkipLogic{Enabled: true, Action: models.ActionEndSurvey}}
		assert.Equal(t, NavigationTarget{Kind: KindEnd}, EvaluateSectionCompleted(sec, def))
	})

	t.Run("specific_section targets the named section", func(t *testing.T) {
		sec := &Section{ID: "s1", SkipLogic: &models.SectionSkipLogic{
			Enabled: true, Action: models.ActionSpecificSection, TargetSectionID: "s3",
		}}
		assert.Equal(t, NavigationTarget{Kind: KindSection, SectionID: "s3"}, EvaluateSectionCompleted(sec, def))
	})

	t.Run("specific_question targets the named question", func(t *testing.T) {
		sec := &Section{ID: "s1", SkipLogic: &models.SectionSkipLogic{
			Enabled: true, Action: models.ActionSpecificQuestion, TargetQuestionID: "q7",
		}}
		assert.Equal(t, NavigationTarget{Kind: KindQuestion, QuestionID: "q7"}, EvaluateSectionCompleted(sec, def))
	})

	t.Run("unknown action falls back to linear advance", func(t *testing.T) {
		sec := &Section{ID: "s2", SkipLogic: &models.SectionSkipLogic{Enabled: true, Action: models.SkipAction("loop_forever")}}
		assert.Equal(t, NavigationTarget{Kind: KindSection, SectionID: "s3"}, EvaluateSectionCompleted(sec, def))
	})
}

func TestResolveTarget(t *testing.T) {
	def := NewDefinition([]Section{
		{ID: "s1", OrderNum: 1, Questions: []Question{{ID: "q1"}, {ID: "q2"}}},
		{ID: "s2", OrderNum: 2, Questions: []Question{{ID: "q3"}}},
	})

	t.Run("question target resolves to its cursor", func(t *testing.T) {
		pos, err := ResolveTarget(NavigationTarget{Kind: KindQuestion, QuestionID: "q3"}, def)
		require.NoError(t, err)
		assert.Equal(t, Position{SectionIndex: 1, QuestionIndex: 0}, pos)
	})

	t.Run("section target resolves to its first question", func(t *testing.T) {
		pos, err := ResolveTarget(NavigationTarget{Kind: KindSection, SectionID: "s2"}, def)
		require.NoError(t, err)
		assert.Equal(t, Position{SectionIndex: 1, QuestionIndex: 0}, pos)
	})

	t.Run("end target resolves to End", func(t *testing.T) {
		pos, err := ResolveTarget(NavigationTarget{Kind: KindEnd}, def)
		require.NoError(t, err)
		assert.True(t, pos.IsEnd())
	})

	t.Run("deleted question surfaces a dangling reference", func(t *testing.T) {
		_, err := ResolveTarget(NavigationTarget{Kind: KindQuestion, QuestionID: "gone"}, def)
		var dangling *DanglingReferenceError
		require.ErrorAs(t, err, &dangling)
		assert.Equal(t, KindQuestion, dangling.Kind)
		assert.Equal(t, "gone", dangling.ID)
	})

	t.Run("deleted section surfaces a dangling reference", func(t *testing.T) {
		_, err := ResolveTarget(NavigationTarget{Kind: KindSection, SectionID: "gone"}, def)
		var dangling *DanglingReferenceError
		require.True(t, errors.As(err, &dangling))
		assert.Equal(t, KindSection, dangling.Kind)
	})
}
