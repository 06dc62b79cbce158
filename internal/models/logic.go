package models

import "encoding/json"

// Operator is the comparison applied between a respondent's answer and a rule
// value. The set is closed but treated as extensible: unknown operators never
// match.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// SkipAction is what happens when a section's questions are exhausted.
type SkipAction string

const (
	ActionNextSection      SkipAction = "next_section"
	ActionSpecificSection  SkipAction = "specific_section"
	ActionSpecificQuestion SkipAction = "specific_question"
	ActionEndSurvey        SkipAction = "end_survey"
)

// SectionSkipLogic is evaluated once per section, after its last question,
// never per-question.
type SectionSkipLogic struct {
	Enabled          bool       `json:"enabled"`
	Action           SkipAction `json:"action" validate:"omitempty,skip_action"`
	TargetSectionID  string     `json:"targetSectionId,omitempty"`
	TargetQuestionID string     `json:"targetQuestionId,omitempty"`
}

// SkipRule redirects flow when the answer to QuestionID satisfies Operator
// against Value. Rules are scanned in array order and the first enabled match
// wins; authors control precedence by ordering.
type SkipRule struct {
	QuestionID         string   `json:"questionId"`
	Operator           Operator `json:"operator" validate:"omitempty,operator"`
	Value              string   `json:"value"`
	TargetSectionID    string   `json:"targetSectionId,omitempty"`
	TargetQuestionID   string   `json:"targetQuestionId,omitempty"`
	TargetQuestionText string   `json:"targetQuestionText,omitempty"`
	Enabled            bool     `json:"enabled"`
}

type QuestionSkipLogic struct {
	Enabled bool       `json:"enabled"`
	Rules   []SkipRule `json:"rules"`
}

// DisplayCondition controls whether a question is shown at all. Either an
// operator triple or, in advanced mode, a raw boolean Expression over the
// answers map.
type DisplayCondition struct {
	QuestionID string   `json:"questionId,omitempty"`
	Operator   Operator `json:"operator,omitempty"`
	Value      string   `json:"value,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

type DisplayLogic struct {
	Conditions []DisplayCondition `json:"conditions"`
}

// QuestionConfig is the recognized shape of Question.Config. Unrecognized
// keys are preserved in storage but ignored here.
type QuestionConfig struct {
	SkipLogic    *QuestionSkipLogic `json:"skipLogic,omitempty"`
	DisplayLogic *DisplayLogic      `json:"displayLogic,omitempty"`
	OriginalID   string             `json:"originalId,omitempty"`
}

// ParseQuestionConfig decodes a question's raw config column. A nil or empty
// column yields the zero config.
func ParseQuestionConfig(raw []byte) (QuestionConfig, error) {
	var cfg QuestionConfig
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return QuestionConfig{}, err
	}
	return cfg, nil
}

// ParseSectionSkipLogic decodes a section's raw skip_logic column.
func ParseSectionSkipLogic(raw []byte) (*SectionSkipLogic, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var sl SectionSkipLogic
	if err := json.Unmarshal(raw, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// ParseOptions decodes a question's raw options column into its option list.
func ParseOptions(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
