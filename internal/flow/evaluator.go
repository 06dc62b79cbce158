package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fieldscope/survey-service/internal/models"
)

// TargetKind tags what a navigation target points at.
type TargetKind string

const (
	KindQuestion TargetKind = "question"
	KindSection  TargetKind = "section"
	KindEnd      TargetKind = "end"
)

// NavigationTarget is the evaluator's verdict: jump to a question, jump to a
// section, or end the survey. A nil *NavigationTarget from question
// evaluation means "no override, advance linearly".
type NavigationTarget struct {
	Kind       TargetKind `json:"kind"`
	SectionID  string     `json:"section_id,omitempty"`
	QuestionID string     `json:"question_id,omitempty"`
}

// Answers accumulates questionID -> answer value for one respondent session.
// Values are string, float64/int, or []string/[]any depending on question type.
type Answers map[string]any

// DanglingReferenceError reports a rule target whose section or question no
// longer exists. Builder callers surface it to the author; respondent-time
// callers fall back to linear advance.
type DanglingReferenceError struct {
	Kind TargetKind
	ID   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("skip logic references missing %s %q", e.Kind, e.ID)
}

// EvaluateQuestionAnswered runs the question's skip rules against the value
// just given. Rules are scanned in array order and the first enabled rule
// whose operator matches wins; authors control precedence purely by ordering.
// Returns nil when skip logic is absent, disabled, or no rule matches.
//
// When a matching rule names both a section and a question target, the
// question wins: it is the more specific of the two.
func EvaluateQuestionAnswered(q *Question, answer any) *NavigationTarget {
	sl := q.Config.SkipLogic
	if sl == nil || !sl.Enabled {
		return nil
	}
	for _, rule := range sl.Rules {
		if !rule.Enabled {
			continue
		}
		if !EvaluateOperator(rule.Operator, answer, rule.Value) {
			continue
		}
		if rule.TargetQuestionID != "" {
			return &NavigationTarget{Kind: KindQuestion, QuestionID: rule.TargetQuestionID}
		}
		if rule.TargetSectionID != "" {
			return &NavigationTarget{Kind: KindSection, SectionID: rule.TargetSectionID}
		}
		// Matching rule with no target behaves like no match.
	}
	return nil
}

// EvaluateSectionCompleted decides where to go once a section's questions are
// exhausted. With no enabled skip logic (or the explicit next_section action)
// the next section by order applies, or End after the last section.
func EvaluateSectionCompleted(sec *Section, def *Definition) NavigationTarget {
	sl := sec.SkipLogic
	if sl == nil || !sl.Enabled || sl.Action == models.ActionNextSection || sl.Action == "" {
		return nextSectionTarget(sec, def)
	}

	switch sl.Action {
	case models.ActionEndSurvey:
		return NavigationTarget{Kind: KindEnd}
	case models.ActionSpecificSection:
		return NavigationTarget{Kind: KindSection, SectionID: sl.TargetSectionID}
	case models.ActionSpecificQuestion:
		return NavigationTarget{Kind: KindQuestion, QuestionID: sl.TargetQuestionID}
	default:
		// Unknown action: treat as linear advance.
		return nextSectionTarget(sec, def)
	}
}

func nextSectionTarget(sec *Section, def *Definition) NavigationTarget {
	idx, ok := def.SectionIndexOf(sec.ID)
	if !ok || idx+1 >= len(def.Sections) {
		return NavigationTarget{Kind: KindEnd}
	}
	return NavigationTarget{Kind: KindSection, SectionID: def.Sections[idx+1].ID}
}

// ResolveTarget translates a target's ids into a concrete cursor. A section
// target lands on the section's first question. End targets resolve to the
// End position. A missing id yields a DanglingReferenceError.
func ResolveTarget(target NavigationTarget, def *Definition) (Position, error) {
	switch target.Kind {
	case KindEnd:
		return End, nil
	case KindQuestion:
		pos, ok := def.PositionOf(target.QuestionID)
		if !ok {
			return End, &DanglingReferenceError{Kind: KindQuestion, ID: target.QuestionID}
		}
		return pos, nil
	case KindSection:
		idx, ok := def.SectionIndexOf(target.SectionID)
		if !ok {
			return End, &DanglingReferenceError{Kind: KindSection, ID: target.SectionID}
		}
		return Position{SectionIndex: idx, QuestionIndex: 0}, nil
	default:
		return End, fmt.Errorf("unknown navigation target kind %q", target.Kind)
	}
}

// EvaluateOperator applies a single rule operator to an answer value. It is
// deliberately lenient: anything unparseable or of an unexpected shape is a
// non-match, never an error, so malformed respondent input can never stall a
// survey in progress.
func EvaluateOperator(op models.Operator, answer any, ruleValue string) bool {
	switch op {
	case models.OpEquals:
		s, ok := answerString(answer)
		return ok && s == ruleValue
	case models.OpNotEquals:
		s, ok := answerString(answer)
		return ok && s != ruleValue
	case models.OpContains:
		if set, ok := answerSet(answer); ok {
			for _, item := range set {
				if item == ruleValue {
					return true
				}
			}
			return false
		}
		s, ok := answerString(answer)
		return ok && strings.Contains(s, ruleValue)
	case models.OpGreaterThan:
		a, b, ok := numericOperands(answer, ruleValue)
		return ok && a > b
	case models.OpLessThan:
		a, b, ok := numericOperands(answer, ruleValue)
		return ok && a < b
	default:
		return false
	}
}

// answerString renders a scalar answer for string comparison. Multi-valued
// answers have no scalar rendering and never match equality operators.
func answerString(answer any) (string, bool) {
	switch v := answer.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// answerSet extracts a multi-select answer's chosen options.
func answerSet(answer any) ([]string, bool) {
	switch v := answer.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func numericOperands(answer any, ruleValue string) (float64, float64, bool) {
	b, err := strconv.ParseFloat(strings.TrimSpace(ruleValue), 64)
	if err != nil {
		return 0, 0, false
	}
	switch v := answer.(type) {
	case float64:
		return v, b, true
	case int:
		return float64(v), b, true
	case string:
		a, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, 0, false
		}
		return a, b, true
	default:
		return 0, 0, false
	}
}
