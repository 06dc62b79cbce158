package validator

import (
	"fmt"

	"github.com/fieldscope/survey-service/internal/flow"
	"github.com/fieldscope/survey-service/internal/models"
)

// LogicValidator handles skip and display logic validation
type LogicValidator struct{}

// NewLogicValidator creates a new logic validator
func NewLogicValidator() *LogicValidator {
	return &LogicValidator{}
}

// ValidateDefinition checks every enabled rule and condition in a parsed
// definition. Structural problems (bad operators, rules without a source
// question) come back as errors; dangling references come back as issues,
// since evaluation tolerates them.
func (v *LogicValidator) ValidateDefinition(def *flow.Definition) ([]flow.LogicIssue, error) {
	for _, sec := range def.Sections {
		if sl := sec.SkipLogic; sl != nil && sl.Enabled {
			if err := v.validateSkipAction(sl.Action); err != nil {
				return nil, fmt.Errorf("section %s: %w", sec.ID, err)
			}
			if sl.Action == models.ActionSpecificSection && sl.TargetSectionID == "" {
				return nil, fmt.Errorf("section %s: specific_section action requires a target section", sec.ID)
			}
			if sl.Action == models.ActionSpecificQuestion && sl.TargetQuestionID == "" {
				return nil, fmt.Errorf("section %s: specific_question action requires a target question", sec.ID)
			}
		}
		for _, q := range sec.Questions {
			if err := v.validateQuestionLogic(&q); err != nil {
				return nil, err
			}
		}
	}
	return flow.ValidateReferences(def), nil
}

func (v *LogicValidator) validateQuestionLogic(q *flow.Question) error {
	if sl := q.Config.SkipLogic; sl != nil && sl.Enabled {
		for i, rule := range sl.Rules {
			if !rule.Enabled {
				continue
			}
			if rule.QuestionID == "" {
				return fmt.Errorf("question %s: skip rule %d has no source question", q.ID, i)
			}
			if err := v.validateOperator(rule.Operator); err != nil {
				return fmt.Errorf("question %s: skip rule %d: %w", q.ID, i, err)
			}
		}
	}
	if dl := q.Config.DisplayLogic; dl != nil {
		for i, cond := range dl.Conditions {
			if cond.Expression != "" {
				continue
			}
			if cond.QuestionID == "" {
				return fmt.Errorf("question %s: display condition %d has neither a source question nor an expression", q.ID, i)
			}
			if err := v.validateOperator(cond.Operator); err != nil {
				return fmt.Errorf("question %s: display condition %d: %w", q.ID, i, err)
			}
		}
	}
	return nil
}

func (v *LogicValidator) validateOperator(op models.Operator) error {
	switch op {
	case models.OpEquals, models.OpNotEquals, models.OpContains,
		models.OpGreaterThan, models.OpLessThan:
		return nil
	default:
		return fmt.Errorf("unsupported operator: %s", op)
	}
}

func (v *LogicValidator) validateSkipAction(action models.SkipAction) error {
	switch action {
	case models.ActionNextSection, models.ActionSpecificSection,
		models.ActionSpecificQuestion, models.ActionEndSurvey, "":
		return nil
	default:
		return fmt.Errorf("unsupported skip action: %s", action)
	}
}
