package flow

import (
	"github.com/expr-lang/expr"
)

// ShouldDisplay reports whether a question is visible given the answers so
// far. Conditions are conjunctive: every condition must hold. A question with
// no display logic is always visible.
//
// A condition either carries an operator triple (questionId, operator, value)
// or, in advanced authoring mode, a boolean expression evaluated over the
// answers map. An expression that fails to compile, errors at runtime, or
// yields a non-boolean counts as unsatisfied; the same lenient policy the
// skip-rule operators follow.
func ShouldDisplay(q *Question, answers Answers) bool {
	dl := q.Config.DisplayLogic
	if dl == nil || len(dl.Conditions) == 0 {
		return true
	}
	for _, cond := range dl.Conditions {
		if cond.Expression != "" {
			if !evaluateExpression(cond.Expression, answers) {
				return false
			}
			continue
		}
		if !EvaluateOperator(cond.Operator, answers[cond.QuestionID], cond.Value) {
			return false
		}
	}
	return true
}

func evaluateExpression(expression string, answers Answers) bool {
	env := map[string]any(answers)
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return false
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	result, ok := output.(bool)
	return ok && result
}
